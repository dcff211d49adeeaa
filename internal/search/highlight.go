package search

// Segment is a run of text that is either inside or outside a match.
type Segment struct {
	Text  string
	Match bool
}

// Segments splits text at the span boundaries. Spans are rune offsets;
// out-of-range or overlapping spans are clipped.
func Segments(text string, spans []Span) []Segment {
	r := []rune(text)
	if len(r) == 0 {
		return nil
	}

	var out []Segment
	pos := 0
	for _, sp := range mergeSpans(spans) {
		start, end := max(sp.Start, pos), min(sp.End, len(r))
		if start >= end {
			continue
		}
		if start > pos {
			out = append(out, Segment{Text: string(r[pos:start])})
		}
		out = append(out, Segment{Text: string(r[start:end]), Match: true})
		pos = end
	}
	if pos < len(r) {
		out = append(out, Segment{Text: string(r[pos:])})
	}
	return out
}

// Highlight renders text with every matched segment passed through mark.
func Highlight(text string, spans []Span, mark func(string) string) string {
	var out []byte
	for _, seg := range Segments(text, spans) {
		if seg.Match {
			out = append(out, mark(seg.Text)...)
			continue
		}
		out = append(out, seg.Text...)
	}
	return string(out)
}
