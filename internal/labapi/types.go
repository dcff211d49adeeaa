package labapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawTest is an individual test record as returned by the tests endpoint.
type RawTest struct {
	ID             FlexString `json:"id"`
	Name           FlexString `json:"name"`
	Code           FlexString `json:"code"`
	Nomenclature   FlexString `json:"nomenclature"`
	AreaName       FlexString `json:"area_name"`
	SampleTypeName FlexString `json:"sample_type_name"`
	ListPrice      FlexNumber `json:"list_price"`
	Price          FlexNumber `json:"price"`
	Description    FlexString `json:"description"`
	DeliveryTime   FlexString `json:"delivery_time"`
	Preparation    FlexString `json:"preparation"`
}

// RawBundle is a bundled profile record as returned by the bundles endpoint.
type RawBundle struct {
	ID           FlexString `json:"id"`
	Name         FlexString `json:"name"`
	Code         FlexString `json:"code"`
	BoxCode      FlexString `json:"box_code"`
	AreaName     FlexString `json:"area_name"`
	BundleCount  FlexNumber `json:"bundle_count"`
	ListPrice    FlexNumber `json:"list_price"`
	Price        FlexNumber `json:"price"`
	Description  FlexString `json:"description"`
	DeliveryTime FlexString `json:"delivery_time"`
	Preparation  FlexString `json:"preparation"`
}

// RawArea is a department record as returned by the areas endpoint.
type RawArea struct {
	ID   FlexString `json:"id"`
	Name FlexString `json:"name"`
}

// envelope is the common {success, data} wrapper of every endpoint.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type searchData struct {
	Tests   []RawTest   `json:"tests"`
	Bundles []RawBundle `json:"bundles"`
}

// FlexString decodes a JSON string, number, or boolean into its text form.
// null and unsupported shapes decode to the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = FlexString(v)
	case data[0] == '{', data[0] == '[':
		*s = ""
	default:
		*s = FlexString(numberText(data))
	}
	return nil
}

// numberText renders a bare JSON number in plain decimal form so 1e3 and
// 1000 yield the same id. Non-numeric literals are returned unchanged.
func numberText(data []byte) string {
	text := string(data)
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return text
	}
	if !strings.ContainsAny(text, "eE") {
		return text
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// String returns the trimmed text value.
func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}

// FlexNumber decodes a JSON number or numeric string. Missing, null,
// empty, and unparseable values are kept as invalid rather than failing
// the whole payload.
type FlexNumber struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	*n = FlexNumber{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	text := string(data)
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		text = strings.TrimSpace(v)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = FlexNumber{Value: f, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler; invalid numbers encode as null.
func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Num returns a valid FlexNumber, for building fixtures.
func Num(v float64) FlexNumber {
	return FlexNumber{Value: v, Valid: true}
}
