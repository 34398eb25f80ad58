package semantic

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFloat16(t *testing.T) {
	tests := []struct {
		name string
		bits uint16
		want float32
	}{
		{"positive zero", 0x0000, 0},
		{"negative zero", 0x8000, 0},
		{"one", 0x3C00, 1},
		{"negative one", 0xBC00, -1},
		{"half", 0x3800, 0.5},
		{"two", 0x4000, 2},
		{"largest normal", 0x7BFF, 65504},
		{"smallest positive normal", 0x0400, 6.103515625e-05},
		{"subnormal", 0x0001, 5.960464477539063e-08},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// every case is exactly representable in float32
			assert.Equal(t, tt.want, decodeFloat16(tt.bits))
		})
	}
}

func TestDecodeFloat16_Infinity(t *testing.T) {
	assert.True(t, math.IsInf(float64(decodeFloat16(0x7C00)), 1))
	assert.True(t, math.IsInf(float64(decodeFloat16(0xFC00)), -1))
	assert.True(t, math.IsNaN(float64(decodeFloat16(0x7C01))))
}

func TestDecodeMatrix(t *testing.T) {
	// two rows of dimension 2: [1, 0.5], [-1, 2]
	values := []uint16{0x3C00, 0x3800, 0xBC00, 0x4000}
	data := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[i*2:], v)
	}

	rows, err := decodeMatrix(data, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []float32{1, 0.5}, rows[0])
	assert.Equal(t, []float32{-1, 2}, rows[1])
}

func TestDecodeMatrix_RejectsBadBuffers(t *testing.T) {
	_, err := decodeMatrix([]byte{0x00}, 2)
	assert.Error(t, err, "odd byte count")

	_, err = decodeMatrix([]byte{0x00, 0x3C, 0x00, 0x38, 0x00, 0x3C}, 2)
	assert.Error(t, err, "value count not a multiple of dim")

	_, err = decodeMatrix([]byte{0x00, 0x3C}, 0)
	assert.Error(t, err, "zero dimension")
}
