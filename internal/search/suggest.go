package search

import (
	"github.com/sahilm/fuzzy"
)

// Suggestion is an entry name whose characters contain the query as a
// subsequence.
type Suggestion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// MatchedIndexes are byte offsets into Name of the matched characters.
	MatchedIndexes []int `json:"matched_indexes"`
}

// nameSource implements fuzzy.Source over folded entry names so accents in
// the query or the name do not prevent a match.
type nameSource struct {
	ix *Index
}

func (s nameSource) String(i int) string {
	return string(s.ix.docs[i].fields[0].text.runes)
}

func (s nameSource) Len() int {
	return len(s.ix.docs)
}

// Suggest returns up to n distinct entry names that fuzzily contain query,
// best first. Short queries yield no suggestions.
func (ix *Index) Suggest(query string, n int) []Suggestion {
	q := foldString(normalizeQuery(query))
	if n <= 0 || len([]rune(q)) < ix.minQuery {
		return nil
	}

	matches := fuzzy.FindFrom(q, nameSource{ix: ix})

	seen := make(map[string]struct{}, n)
	out := make([]Suggestion, 0, n)
	for _, m := range matches {
		e := &ix.entries[m.Index]
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, Suggestion{
			ID:             e.ID,
			Name:           e.Name,
			MatchedIndexes: originalByteOffsets(ix.docs[m.Index].fields[0].text, e.Name, m.MatchedIndexes),
		})
		if len(out) == n {
			break
		}
	}
	return out
}

// originalByteOffsets converts byte offsets in the folded name into byte
// offsets in the original name.
func originalByteOffsets(f folded, original string, foldedOffsets []int) []int {
	if len(foldedOffsets) == 0 {
		return nil
	}

	// Byte offset of each folded rune, and of each original rune.
	foldedRuneAt := make(map[int]int, len(f.runes))
	b := 0
	for i, r := range f.runes {
		foldedRuneAt[b] = i
		b += len(string(r))
	}
	origByte := make([]int, 0, f.length)
	for i := range original {
		origByte = append(origByte, i)
	}

	out := make([]int, 0, len(foldedOffsets))
	last := -1
	for _, off := range foldedOffsets {
		ri, ok := foldedRuneAt[off]
		if !ok {
			continue
		}
		o := f.origin[ri]
		if o >= len(origByte) || origByte[o] == last {
			continue
		}
		last = origByte[o]
		out = append(out, last)
	}
	return out
}
