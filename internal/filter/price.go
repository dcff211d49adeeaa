package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PriceRange is an inclusive price interval. Max is +Inf for open ranges.
type PriceRange struct {
	Min float64
	Max float64
}

// Contains reports whether price lies within the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// ParsePriceRange parses "a-b" (inclusive) or "a+" (a and above).
func ParsePriceRange(s string) (PriceRange, error) {
	s = strings.TrimSpace(s)

	if lo, ok := strings.CutSuffix(s, "+"); ok {
		minPrice, err := parseAmount(lo)
		if err != nil {
			return PriceRange{}, fmt.Errorf("price range %q: %w", s, err)
		}
		return PriceRange{Min: minPrice, Max: math.Inf(1)}, nil
	}

	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return PriceRange{}, fmt.Errorf("price range %q must be a-b or a+", s)
	}
	minPrice, err := parseAmount(lo)
	if err != nil {
		return PriceRange{}, fmt.Errorf("price range %q: %w", s, err)
	}
	maxPrice, err := parseAmount(hi)
	if err != nil {
		return PriceRange{}, fmt.Errorf("price range %q: %w", s, err)
	}
	if minPrice > maxPrice {
		return PriceRange{}, fmt.Errorf("price range %q: lower bound exceeds upper bound", s)
	}
	return PriceRange{Min: minPrice, Max: maxPrice}, nil
}

func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
