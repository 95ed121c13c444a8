package feed

import "time"

// DefaultSpan is the look-back of the dashboard charts.
const DefaultSpan = 24 * time.Hour

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastWindow returns [now-span, now].
func LastWindow(now time.Time, span time.Duration) Window {
	return Window{Start: now.Add(-span), End: now}
}

// Contains reports whether Start <= t <= End.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// FilterWindow returns the records with start <= TimeAdded <= end, preserving
// order.
func FilterWindow(records []Record, start, end time.Time) []Record {
	w := Window{Start: start, End: end}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if w.Contains(r.TimeAdded) {
			out = append(out, r)
		}
	}
	return out
}
