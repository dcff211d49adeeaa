package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Biometría Hemática", want: "biometria hematica"},
		{in: "PARACETAMOL", want: "paracetamol"},
		{in: "Ácido Úrico", want: "acido urico"},
		{in: "Niño", want: "nino"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, foldString(tt.in))
		})
	}
}

func TestFold_OffsetsTrackOriginalRunes(t *testing.T) {
	t.Parallel()

	// "e" followed by a combining acute accent folds to a single rune.
	f := fold("Cafe\u0301 Ole\u0301")
	assert.Equal(t, "cafe ole", string(f.runes))
	assert.Equal(t, 10, f.length)
	assert.Equal(t, []int{0, 1, 2, 3, 5, 6, 7, 8}, f.origin)

	// Folded "ole" starts at original rune 6.
	assert.Equal(t, Span{Start: 6, End: 9}, f.span(5, 8))
	assert.Equal(t, Span{}, f.span(3, 3))
}
