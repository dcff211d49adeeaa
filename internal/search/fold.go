package search

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folded is a lowercased, accent-stripped copy of a string that remembers
// which original rune produced each folded rune.
type folded struct {
	runes []rune
	// origin[i] is the rune offset in the original string of runes[i].
	origin []int
	// length is the original string's length in runes.
	length int
}

func newFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// fold folds s one rune at a time so offsets stay aligned with the input.
func fold(s string) folded {
	f := folded{
		runes:  make([]rune, 0, len(s)),
		origin: make([]int, 0, len(s)),
	}

	t := newFolder()
	i := 0
	for _, r := range s {
		if r < 0x80 {
			f.runes = append(f.runes, unicode.ToLower(r))
			f.origin = append(f.origin, i)
			i++
			continue
		}

		t.Reset()
		out, _, err := transform.String(t, string(r))
		if err != nil {
			out = string(r)
		}
		for _, fr := range out {
			f.runes = append(f.runes, unicode.ToLower(fr))
			f.origin = append(f.origin, i)
		}
		i++
	}
	f.length = i
	return f
}

// foldString folds s and returns the folded text.
func foldString(s string) string {
	return string(fold(s).runes)
}

// span maps a half-open range of folded runes back to the original text.
func (f folded) span(start, end int) Span {
	if start >= end || start >= len(f.origin) {
		return Span{}
	}
	return Span{Start: f.origin[start], End: f.origin[end-1] + 1}
}
