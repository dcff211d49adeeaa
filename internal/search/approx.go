package search

// approxMatch is the best approximate occurrence of a pattern in a text.
type approxMatch struct {
	distance int
	// start and end delimit the matched substring of the text, half-open.
	start, end int
}

// approxFind returns the minimum edit distance between pattern and any
// substring of text, and where that substring lies (Sellers' algorithm).
// Among equally good substrings the one ending first wins.
func approxFind(pattern, text []rune) approxMatch {
	m, n := len(pattern), len(text)
	if m == 0 {
		return approxMatch{}
	}
	if n == 0 {
		return approxMatch{distance: m}
	}

	// The DP runs one text column at a time. cost[i] is the distance of
	// pattern[:i] to the best substring ending at the current column and
	// from[i] is the text offset where that substring begins.
	prev := make([]int, m+1)
	prevFrom := make([]int, m+1)
	cur := make([]int, m+1)
	curFrom := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}

	best := approxMatch{distance: m + 1}
	for j := 1; j <= n; j++ {
		cur[0], curFrom[0] = 0, j
		tc := text[j-1]

		for i := 1; i <= m; i++ {
			c, from := prev[i-1], prevFrom[i-1]
			if pattern[i-1] != tc {
				c++
			}
			if up := cur[i-1] + 1; up < c {
				c, from = up, curFrom[i-1]
			}
			if left := prev[i] + 1; left < c {
				c, from = left, prevFrom[i]
			}
			cur[i], curFrom[i] = c, from
		}

		if cur[m] < best.distance {
			best = approxMatch{distance: cur[m], start: curFrom[m], end: j}
			if best.distance == 0 {
				break
			}
		}

		prev, cur = cur, prev
		prevFrom, curFrom = curFrom, prevFrom
	}
	return best
}
