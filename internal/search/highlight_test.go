package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		spans []Span
		want  []Segment
	}{
		{
			name:  "no spans",
			text:  "Glucosa",
			spans: nil,
			want:  []Segment{{Text: "Glucosa"}},
		},
		{
			name:  "prefix",
			text:  "Paracetamol",
			spans: []Span{{Start: 0, End: 5}},
			want:  []Segment{{Text: "Parac", Match: true}, {Text: "etamol"}},
		},
		{
			name:  "multibyte runes",
			text:  "Biometría Hemática",
			spans: []Span{{Start: 10, End: 18}},
			want:  []Segment{{Text: "Biometría "}, {Text: "Hemática", Match: true}},
		},
		{
			name:  "clipped span",
			text:  "Urea",
			spans: []Span{{Start: 2, End: 40}},
			want:  []Segment{{Text: "Ur"}, {Text: "ea", Match: true}},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Segments(tt.text, tt.spans))
		})
	}
}

func TestHighlight(t *testing.T) {
	t.Parallel()

	got := Highlight("Perfil Tiroideo", []Span{{Start: 0, End: 6}, {Start: 7, End: 15}}, strings.ToUpper)
	assert.Equal(t, "PERFIL TIROIDEO", got)

	got = Highlight("Perfil Tiroideo", []Span{{Start: 7, End: 10}}, func(s string) string { return "[" + s + "]" })
	assert.Equal(t, "Perfil [Tir]oideo", got)
}
