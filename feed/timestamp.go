package feed

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// SecondsThreshold separates unix-second from unix-millisecond magnitudes.
// Values below it are seconds. Changing it reclassifies timestamps near the
// boundary, so it stays at 2e12.
const SecondsThreshold = 2e12

// maxEpochMS is the largest representable instant, in either direction, of a
// browser Date (100,000,000 days around the epoch).
const maxEpochMS = 8.64e15

// zone-qualified layouts are tried before zone-less ones; zone-less layouts
// are interpreted in the caller's location, date-only layouts in UTC.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02 15:04:05.999999999Z0700",
		"2006-01-02T15:04:05Z07",
		"2006-01-02 15:04:05Z07",
		time.RFC1123Z,
		time.RFC1123,
		time.RFC850,
		"Mon, 2 Jan 2006 15:04:05 MST",
		"Mon Jan 02 2006 15:04:05 GMT-0700",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
		"2006/01/02",
		"01/02/2006 15:04:05",
		"01/02/2006",
		time.ANSIC,
		"Jan 2, 2006 15:04:05",
		"Jan 2, 2006",
		"January 2, 2006",
	}
	dateLayouts = []string{
		"2006-01-02",
		"2006-01",
	}
)

// ParseTimestamp interprets value as an instant. Zone-less calendar strings
// are read in time.Local.
func ParseTimestamp(value any) (time.Time, bool) {
	return ParseTimestampIn(value, time.Local)
}

// ParseTimestampIn interprets value as an instant:
//   - nil, false, zero and "" are absent
//   - numbers below SecondsThreshold are unix seconds, others unix milliseconds
//   - digit-only strings are treated as the number they spell
//   - other strings are parsed as calendar date/times
//
// The returned time is in UTC.
func ParseTimestampIn(value any, loc *time.Location) (time.Time, bool) {
	if !truthy(value) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if n, ok := numeric(value); ok {
		return fromEpoch(n)
	}
	switch t := value.(type) {
	case string:
		s := strings.TrimSpace(t)
		if isDigits(s) {
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return time.Time{}, false
			}
			return fromEpoch(n)
		}
		return parseCalendar(s, loc)
	case time.Time:
		return t.UTC(), !t.IsZero()
	default:
		return time.Time{}, false
	}
}

func fromEpoch(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, false
	}
	ms := n
	if n < SecondsThreshold {
		ms = n * 1000
	}
	ms = math.Trunc(ms)
	if math.Abs(ms) > maxEpochMS {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

func parseCalendar(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
