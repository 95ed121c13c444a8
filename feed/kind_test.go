package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		opts    Options
		want    Kind
	}{
		{name: "nil", payload: nil, want: KindEmpty},
		{name: "number", payload: 42.0, want: KindEmpty},
		{name: "string", payload: "hello", want: KindEmpty},
		{name: "empty list", payload: []any{}, want: KindList},
		{name: "plain list", payload: []any{map[string]any{"lineSize": 1}}, want: KindList},
		{name: "wrapped list", payload: []any{map[string]any{"json": map[string]any{}}}, want: KindWrapped},
		{name: "wrapped with null value", payload: []any{map[string]any{"json": nil}}, want: KindWrapped},
		{name: "wrapper key only checked on first element", payload: []any{nil, map[string]any{"json": 1}}, want: KindList},
		{name: "data field", payload: map[string]any{"data": []any{}}, want: KindDataField},
		{name: "items field", payload: map[string]any{"items": []any{}}, want: KindItemsField},
		{name: "data wins over items", payload: map[string]any{"data": []any{}, "items": []any{1.0}}, want: KindDataField},
		{name: "non-slice data is a single record", payload: map[string]any{"data": "x"}, want: KindSingle},
		{name: "single record", payload: map[string]any{"lineSize": 3}, want: KindSingle},
		{
			name:    "batches ignored by default",
			payload: []any{map[string]any{"data": []any{}}},
			want:    KindList,
		},
		{
			name:    "batches when enabled",
			payload: []any{map[string]any{"data": []any{}}},
			opts:    Options{FlattenBatches: true},
			want:    KindBatches,
		},
		{
			name:    "batches take precedence over wrapper key",
			payload: []any{map[string]any{"data": []any{}, "json": 1}},
			opts:    Options{FlattenBatches: true},
			want:    KindBatches,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyWith(tt.payload, tt.opts))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "wrapped", KindWrapped.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
