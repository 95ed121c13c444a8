package feed

// Normalize flattens payload into a list of candidate records using the
// default options. It never fails; an unrecognized shape yields an empty list.
func Normalize(payload any) []any {
	return NormalizeWith(payload, Options{})
}

// NormalizeWith flattens payload according to its Kind.
func NormalizeWith(payload any, opts Options) []any {
	switch ClassifyWith(payload, opts) {
	case KindBatches:
		var out []any
		for _, batch := range payload.([]any) {
			m, ok := batch.(map[string]any)
			if !ok {
				continue
			}
			if data, ok := m["data"].([]any); ok {
				out = append(out, data...)
			}
		}
		return compact(out)
	case KindWrapped:
		items := payload.([]any)
		out := make([]any, 0, len(items))
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if v := m[wrapperKey]; truthy(v) {
				out = append(out, v)
			}
		}
		return out
	case KindList:
		return compact(payload.([]any))
	case KindDataField:
		return compact(payload.(map[string]any)["data"].([]any))
	case KindItemsField:
		return compact(payload.(map[string]any)["items"].([]any))
	case KindSingle:
		return []any{payload}
	default:
		return []any{}
	}
}

// compact returns the truthy elements of in as a new slice.
func compact(in []any) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		if truthy(v) {
			out = append(out, v)
		}
	}
	return out
}
