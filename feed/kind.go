package feed

import "fmt"

// Kind identifies the envelope shape of a raw payload.
type Kind int

const (
	KindEmpty Kind = iota
	KindBatches
	KindWrapped
	KindList
	KindDataField
	KindItemsField
	KindSingle
)

// wrapperKey is the per-item envelope key used by n8n item lists.
const wrapperKey = "json"

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindBatches:
		return "batches"
	case KindWrapped:
		return "wrapped"
	case KindList:
		return "list"
	case KindDataField:
		return "data"
	case KindItemsField:
		return "items"
	case KindSingle:
		return "single"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Options tune envelope resolution.
type Options struct {
	// FlattenBatches accepts [{"data": [...]}, ...] and concatenates every
	// batch's data array. It is checked before all other shapes when set.
	FlattenBatches bool
}

// Classify resolves the envelope shape of payload using the default options.
func Classify(payload any) Kind {
	return ClassifyWith(payload, Options{})
}

// ClassifyWith resolves the envelope shape of payload. The first matching rule
// wins; the order of the switch below is the precedence order.
func ClassifyWith(payload any, opts Options) Kind {
	switch p := payload.(type) {
	case []any:
		switch {
		case opts.FlattenBatches && len(p) > 0 && hasSliceField(p[0], "data"):
			return KindBatches
		case len(p) > 0 && hasKey(p[0], wrapperKey):
			return KindWrapped
		default:
			return KindList
		}
	case map[string]any:
		switch {
		case hasSliceField(p, "data"):
			return KindDataField
		case hasSliceField(p, "items"):
			return KindItemsField
		default:
			return KindSingle
		}
	default:
		return KindEmpty
	}
}

func hasKey(v any, key string) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m[key]
	return ok
}

func hasSliceField(v any, key string) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m[key].([]any)
	return ok
}
