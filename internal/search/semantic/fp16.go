package semantic

import (
	"encoding/binary"
	"fmt"
	"math"
)

// decodeFloat16 converts an IEEE 754 half-precision value to float32.
func decodeFloat16(h uint16) float32 {
	sign := uint32(h>>15) & 1
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff

	var bits uint32
	switch {
	case exp == 0 && frac == 0:
		bits = sign << 31
	case exp == 0:
		// subnormal: normalize into float32 range
		e := uint32(127 - 15 + 1)
		for frac&0x400 == 0 {
			frac <<= 1
			e--
		}
		frac &= 0x3ff
		bits = sign<<31 | e<<23 | frac<<13
	case exp == 0x1f:
		bits = sign<<31 | 0xff<<23 | frac<<13
	default:
		bits = sign<<31 | (exp+127-15)<<23 | frac<<13
	}

	return math.Float32frombits(bits)
}

// decodeMatrix decompresses a row-major fp16 buffer into float32 rows of the
// given dimension.
func decodeMatrix(data []byte, dim int) ([][]float32, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dim)
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("fp16 buffer has odd length %d", len(data))
	}

	total := len(data) / 2
	if total%dim != 0 {
		return nil, fmt.Errorf("fp16 buffer of %d values is not a multiple of dim %d", total, dim)
	}

	rows := make([][]float32, total/dim)
	for r := range rows {
		row := make([]float32, dim)
		for c := 0; c < dim; c++ {
			offset := (r*dim + c) * 2
			row[c] = decodeFloat16(binary.LittleEndian.Uint16(data[offset : offset+2]))
		}
		rows[r] = row
	}

	return rows, nil
}
