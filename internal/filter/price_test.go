package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    PriceRange
		wantErr bool
	}{
		{in: "0-500", want: PriceRange{Min: 0, Max: 500}},
		{in: " 500 - 1000 ", want: PriceRange{Min: 500, Max: 1000}},
		{in: "$1,000-$2,000", want: PriceRange{Min: 1000, Max: 2000}},
		{in: "1000+", want: PriceRange{Min: 1000, Max: math.Inf(1)}},
		{in: "12.5-99.9", want: PriceRange{Min: 12.5, Max: 99.9}},
		{in: "500-100", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "+", wantErr: true},
		{in: "1-x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePriceRange(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceRange_Contains(t *testing.T) {
	t.Parallel()

	r := PriceRange{Min: 0, Max: 500}
	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(500))
	assert.False(t, r.Contains(500.01))
	assert.True(t, PriceRange{Min: 1000, Max: math.Inf(1)}.Contains(1e9))
}
