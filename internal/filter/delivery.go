package filter

import (
	"regexp"
	"strconv"
	"strings"
)

// Bucket is a coarse delivery time class.
type Bucket string

// Delivery buckets.
const (
	BucketSameDay Bucket = "same-day"
	Bucket24h     Bucket = "24h"
	Bucket48h     Bucket = "48h"
	Bucket72hPlus Bucket = "72h+"
)

// Buckets lists the delivery buckets from fastest to slowest.
var Buckets = []Bucket{BucketSameDay, Bucket24h, Bucket48h, Bucket72hPlus}

var (
	durationPattern = regexp.MustCompile(`(\d+)\s*(h|hr|hrs|hora|horas|hour|hours|d|dia|dias|día|días|day|days)\b`)
	numberPattern   = regexp.MustCompile(`\d+`)
	sameDayMarkers  = []string{"same day", "same-day", "mismo día", "mismo dia", "inmediato"}
)

// ParseBucket recognizes a bucket name.
func ParseBucket(s string) (Bucket, bool) {
	b := Bucket(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Buckets {
		if b == known {
			return b, true
		}
	}
	return "", false
}

// BucketOf classifies a free-form delivery label such as "24 horas",
// "2 días", or "Mismo día". Labels without a recognizable duration report
// false.
func BucketOf(label string) (Bucket, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return "", false
	}
	for _, marker := range sameDayMarkers {
		if strings.Contains(l, marker) {
			return BucketSameDay, true
		}
	}

	hours, ok := labelHours(l)
	if !ok {
		return "", false
	}
	switch {
	case hours == 0:
		return BucketSameDay, true
	case hours <= 24:
		return Bucket24h, true
	case hours <= 48:
		return Bucket48h, true
	default:
		return Bucket72hPlus, true
	}
}

// labelHours returns the longest duration mentioned in the label, in hours.
// A bare number is read as hours.
func labelHours(l string) (int, bool) {
	matches := durationPattern.FindAllStringSubmatch(l, -1)
	if len(matches) == 0 {
		n := numberPattern.FindAllString(l, -1)
		if len(n) == 0 {
			return 0, false
		}
		matches = make([][]string, 0, len(n))
		for _, s := range n {
			matches = append(matches, []string{s, s, "h"})
		}
	}

	longest := -1
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if !strings.HasPrefix(m[2], "h") {
			n *= 24
		}
		longest = max(longest, n)
	}
	// A range such as "3-5 días" carries its unit only once.
	if strings.Contains(l, "-") && len(matches) == 1 {
		for _, s := range numberPattern.FindAllString(l, -1) {
			n, err := strconv.Atoi(s)
			if err != nil {
				continue
			}
			if !strings.HasPrefix(matches[0][2], "h") {
				n *= 24
			}
			longest = max(longest, n)
		}
	}
	return longest, longest >= 0
}
