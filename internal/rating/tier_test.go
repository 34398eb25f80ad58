package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		name   string
		rating float64
		want   Tier
	}{
		{"top of scale", 9, UsuallyAppropriate},
		{"lower boundary of usually appropriate", 7, UsuallyAppropriate},
		{"fractional above seven", 7.5, UsuallyAppropriate},
		{"just below seven", 6.9, MayBeAppropriate},
		{"middle of may-be band", 5, MayBeAppropriate},
		{"lower boundary of may-be band", 4, MayBeAppropriate},
		{"just below four", 3.9, UsuallyNotAppropriate},
		{"bottom of scale", 1, UsuallyNotAppropriate},
		{"zero from corrupt data", 0, UsuallyNotAppropriate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.rating))
		})
	}
}
