package labapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString_Unmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "string", input: `"BH"`, want: "BH"},
		{name: "integer", input: `42`, want: "42"},
		{name: "float", input: `4.5`, want: "4.5"},
		{name: "null", input: `null`, want: ""},
		{name: "bool", input: `true`, want: "true"},
		{name: "object", input: `{"a":1}`, want: ""},
		{name: "padded string", input: `"  Glucosa "`, want: "Glucosa"},
		{name: "exponent", input: `1e3`, want: "1000"},
		{name: "fractional exponent", input: `2.5E1`, want: "25"},
		{name: "exponent string kept", input: `"1e3"`, want: "1e3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var s FlexString
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			assert.Equal(t, tt.want, s.String())
		})
	}
}

func TestFlexNumber_Unmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		want      float64
		wantValid bool
	}{
		{name: "number", input: `12.5`, want: 12.5, wantValid: true},
		{name: "numeric string", input: `"300.00"`, want: 300, wantValid: true},
		{name: "null", input: `null`},
		{name: "garbage string", input: `"n/a"`},
		{name: "empty string", input: `""`},
		{name: "NaN string", input: `"NaN"`},
		{name: "array", input: `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var n FlexNumber
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			assert.Equal(t, tt.wantValid, n.Valid)
			assert.InDelta(t, tt.want, n.Value, 1e-9)
		})
	}
}

func TestFlexNumber_Marshal(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		A FlexNumber `json:"a"`
		B FlexNumber `json:"b"`
	}{A: Num(3), B: FlexNumber{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":null}`, string(data))
}

func TestEnvelope_UnknownFieldsIgnored(t *testing.T) {
	t.Parallel()

	var env envelope[[]RawTest]
	err := json.Unmarshal([]byte(`{"success":true,"count":1,"data":[{"id":9,"name":"X","extra":true}]}`), &env)
	require.NoError(t, err)
	assert.True(t, env.Success)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "9", env.Data[0].ID.String())
}
