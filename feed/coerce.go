package feed

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// truthy reports whether v counts as present in an upstream payload: nil,
// false, zero, NaN and the empty string do not.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String() != ""
		}
		return f != 0 && !math.IsNaN(f)
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	case uint64:
		return t != 0
	case uint32:
		return t != 0
	default:
		return true
	}
}

// numeric extracts a float from the numeric types a JSON decoder may produce.
func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case uint32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toFinite converts a size field to a finite float. Strings are trimmed and an
// empty string or null counts as zero; booleans count as 0 or 1. Objects,
// arrays, unparseable strings and infinities are rejected.
func toFinite(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		parsed, ok := parseNumericString(s)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		n, ok := numeric(v)
		if !ok {
			return 0, false
		}
		f = n
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumericString(s string) (float64, bool) {
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		if strings.Contains(s, "_") {
			return 0, false
		}
		u, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(u), true
	}
	// strconv spells infinity differently and accepts nan; neither is finite
	if strings.Contains(s, "_") || strings.Contains(lower, "n") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
