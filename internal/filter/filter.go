// Package filter narrows a set of catalog entries by category, price range,
// delivery time, and area. Every active filter must match (AND), the order
// of application does not matter, and the input is never modified.
package filter

import (
	"errors"
	"fmt"
	"strings"

	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// All is the value that disables a filter.
const All = "all"

// Filter keys as used by ParseFilters, Set, and Active.
const (
	KeyCategory = "category"
	KeyLevel    = "level"
	KeyPrice    = "price"
	KeyDelivery = "delivery"
	KeyArea     = "area"
)

// Keys lists every filter key.
var Keys = []string{KeyCategory, KeyLevel, KeyPrice, KeyDelivery, KeyArea}

// ErrUnknownKey is returned when a filter key is not recognized.
var ErrUnknownKey = errors.New("unknown filter key")

// Filters is the set of active criteria. The zero value matches everything.
type Filters struct {
	Category string `json:"category,omitempty"`
	// CategoryLevel selects the field Category is compared against.
	// Empty means study type.
	CategoryLevel domain.CategoryLevel `json:"category_level,omitempty"`
	PriceRange    string               `json:"price_range,omitempty"`
	DeliveryTime  string               `json:"delivery_time,omitempty"`
	Area          string               `json:"area,omitempty"`
}

// KV is one active filter.
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Apply returns the entries that satisfy every active filter, in input
// order. The input slice is not modified.
func Apply(entries []domain.CatalogEntry, f Filters) []domain.CatalogEntry {
	match := f.Predicate()
	out := make([]domain.CatalogEntry, 0, len(entries))
	for i := range entries {
		if match(&entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}

// Predicate compiles f into a function reporting whether an entry passes.
// Values that cannot be interpreted are treated as inactive.
func (f Filters) Predicate() func(*domain.CatalogEntry) bool {
	var checks []func(*domain.CatalogEntry) bool

	if active(f.Category) {
		level := f.level()
		if level.Valid() {
			category := f.Category
			checks = append(checks, func(e *domain.CatalogEntry) bool {
				return e.CategoryValue(level) == category
			})
		}
	}

	if active(f.PriceRange) {
		if r, err := ParsePriceRange(f.PriceRange); err == nil {
			checks = append(checks, func(e *domain.CatalogEntry) bool {
				return r.Contains(e.Price)
			})
		}
	}

	if active(f.DeliveryTime) {
		want := strings.TrimSpace(f.DeliveryTime)
		if bucket, ok := ParseBucket(want); ok {
			checks = append(checks, func(e *domain.CatalogEntry) bool {
				got, known := BucketOf(e.DeliveryTime)
				return known && got == bucket
			})
		} else {
			checks = append(checks, func(e *domain.CatalogEntry) bool {
				return strings.EqualFold(strings.TrimSpace(e.DeliveryTime), want)
			})
		}
	}

	if active(f.Area) {
		area := f.Area
		checks = append(checks, func(e *domain.CatalogEntry) bool {
			return e.Area == area
		})
	}

	return func(e *domain.CatalogEntry) bool {
		for _, check := range checks {
			if !check(e) {
				return false
			}
		}
		return true
	}
}

// Validate reports values that Apply will ignore because they cannot be
// interpreted.
func (f Filters) Validate() error {
	return errors.Join(f.problems()...)
}

// Warnings returns one message per value that Apply will ignore, or nil
// when every active value is usable.
func (f Filters) Warnings() []string {
	problems := f.problems()
	if len(problems) == 0 {
		return nil
	}
	out := make([]string, len(problems))
	for i, err := range problems {
		out[i] = "ignored filter: " + err.Error()
	}
	return out
}

func (f Filters) problems() []error {
	var errs []error
	if f.CategoryLevel != "" && !f.CategoryLevel.Valid() {
		errs = append(errs, fmt.Errorf("category level %q must be one of %v", f.CategoryLevel, domain.CategoryLevels))
	}
	if active(f.PriceRange) {
		if _, err := ParsePriceRange(f.PriceRange); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// IsZero reports whether no filter is active.
func (f Filters) IsZero() bool {
	return len(f.Active()) == 0
}

// Active lists the active filters in key order.
func (f Filters) Active() []KV {
	var out []KV
	if active(f.Category) {
		out = append(out, KV{Key: KeyCategory, Value: f.Category})
		if f.CategoryLevel != "" {
			out = append(out, KV{Key: KeyLevel, Value: string(f.CategoryLevel)})
		}
	}
	if active(f.PriceRange) {
		out = append(out, KV{Key: KeyPrice, Value: f.PriceRange})
	}
	if active(f.DeliveryTime) {
		out = append(out, KV{Key: KeyDelivery, Value: f.DeliveryTime})
	}
	if active(f.Area) {
		out = append(out, KV{Key: KeyArea, Value: f.Area})
	}
	return out
}

// Set assigns value to the filter named key.
func (f *Filters) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case KeyCategory:
		f.Category = value
	case KeyLevel:
		f.CategoryLevel = domain.CategoryLevel(value)
	case KeyPrice:
		f.PriceRange = value
	case KeyDelivery:
		f.DeliveryTime = value
	case KeyArea:
		f.Area = value
	default:
		return fmt.Errorf("%w %q (want one of %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}
	return nil
}

// Remove clears the filter named key.
func (f *Filters) Remove(key string) error {
	return f.Set(key, "")
}

// ParseFilters builds Filters from key=value pairs such as
// "price=0-500" or "area=Hematología".
func ParseFilters(pairs []string) (Filters, error) {
	var f Filters
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return Filters{}, fmt.Errorf("filter %q must be key=value", pair)
		}
		if err := f.Set(key, value); err != nil {
			return Filters{}, err
		}
	}
	return f, nil
}

func (f Filters) level() domain.CategoryLevel {
	if f.CategoryLevel == "" {
		return domain.LevelStudyType
	}
	return f.CategoryLevel
}

func active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}
