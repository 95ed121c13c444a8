package feed

import "time"

// Result is the output of one pipeline run.
type Result struct {
	Kind       Kind
	Window     Window
	Records    []Record
	Latest     *Record
	Candidates int
	Valid      int
	Drops      DropStats
}

// Empty reports whether no record survived sanitizing and windowing.
func (r Result) Empty() bool { return len(r.Records) == 0 }

// OutOfWindow returns how many valid records fell outside the window.
func (r Result) OutOfWindow() int { return r.Valid - len(r.Records) }

// Run normalizes payload, sanitizes the candidates and keeps the records
// inside w. Zone-less timestamps are read in time.Local.
func Run(payload any, w Window, opts Options) Result {
	return RunIn(payload, w, opts, time.Local)
}

// RunIn is Run with an explicit location for zone-less timestamps.
func RunIn(payload any, w Window, opts Options, loc *time.Location) Result {
	kind := ClassifyWith(payload, opts)
	raw := NormalizeWith(payload, opts)
	records, drops := sanitizeIn(raw, loc)
	inWindow := FilterWindow(records, w.Start, w.End)
	res := Result{
		Kind:       kind,
		Window:     w,
		Records:    inWindow,
		Candidates: len(raw),
		Valid:      len(records),
		Drops:      drops,
	}
	if n := len(inWindow); n > 0 {
		latest := inWindow[n-1]
		res.Latest = &latest
	}
	return res
}
