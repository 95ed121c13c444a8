package feed

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(kv ...any) map[string]any {
	m := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func TestNormalize(t *testing.T) {
	a := rec("id", 1.0)
	b := rec("id", 2.0)

	tests := []struct {
		name    string
		payload any
		want    []any
	}{
		{name: "nil", payload: nil, want: []any{}},
		{name: "primitive", payload: true, want: []any{}},
		{name: "wrapped drops falsy values", payload: []any{rec("json", a), rec("json", nil), rec("json", b), rec("json", false)}, want: []any{a, b}},
		{name: "wrapped skips non-object items", payload: []any{rec("json", a), "junk", nil}, want: []any{a}},
		{name: "plain list drops falsy", payload: []any{a, nil, false, 0.0, "", json.Number("0"), b}, want: []any{a, b}},
		{name: "data field", payload: rec("data", []any{a, nil, b}), want: []any{a, b}},
		{name: "items field", payload: rec("items", []any{nil, b}), want: []any{b}},
		{name: "single record", payload: a, want: []any{a}},
		{name: "empty data", payload: rec("data", []any{}), want: []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.payload))
		})
	}
}

func TestNormalizeFixedPoint(t *testing.T) {
	list := []any{rec("id", 1.0, "lineSize", 3.0), rec("id", 2.0), "text", 7.0}

	once := Normalize(list)
	require.Equal(t, list, once)
	assert.Equal(t, once, Normalize(once))
}

func TestNormalizeBatches(t *testing.T) {
	a := rec("id", 1.0)
	b := rec("id", 2.0)
	c := rec("id", 3.0)
	payload := []any{
		rec("data", []any{a, nil}),
		"junk",
		rec("data", []any{b, c}),
		rec("other", 1.0),
	}

	got := NormalizeWith(payload, Options{FlattenBatches: true})
	assert.Equal(t, []any{a, b, c}, got)

	// without the option the batch envelopes are plain records
	assert.Len(t, Normalize(payload), 4)
}
