package feed

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// DropReason names why a candidate record was discarded.
type DropReason string

const (
	DropNotObject    DropReason = "not_object"
	DropBadTimeAdded DropReason = "bad_time_added"
	DropBadLineSize  DropReason = "bad_line_size"
	DropBadPartySize DropReason = "bad_party_size"
)

const maxDropExamples = 3

type dropInfo struct {
	count    int
	examples []string
}

// DropStats counts discarded records per reason. The zero value is ready to use.
type DropStats struct {
	drops map[DropReason]*dropInfo
}

// Add records one dropped record with an example identifier.
func (d *DropStats) Add(reason DropReason, example string) {
	if d.drops == nil {
		d.drops = make(map[DropReason]*dropInfo)
	}
	info := d.drops[reason]
	if info == nil {
		info = &dropInfo{examples: make([]string, 0, maxDropExamples)}
		d.drops[reason] = info
	}
	info.count++
	if len(info.examples) < maxDropExamples && example != "" {
		info.examples = append(info.examples, example)
	}
}

// Count returns the number of records dropped for reason.
func (d DropStats) Count(reason DropReason) int {
	if info := d.drops[reason]; info != nil {
		return info.count
	}
	return 0
}

// Total returns the number of dropped records across all reasons.
func (d DropStats) Total() int {
	n := 0
	for _, info := range d.drops {
		n += info.count
	}
	return n
}

// Examples returns up to three identifiers of records dropped for reason.
func (d DropStats) Examples(reason DropReason) []string {
	if info := d.drops[reason]; info != nil {
		return append([]string(nil), info.examples...)
	}
	return nil
}

// Reasons returns the reasons with at least one drop, sorted by name.
func (d DropStats) Reasons() []DropReason {
	out := make([]DropReason, 0, len(d.drops))
	for r := range d.drops {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Counts returns a copy of the per-reason counters.
func (d DropStats) Counts() map[DropReason]int {
	out := make(map[DropReason]int, len(d.drops))
	for r, info := range d.drops {
		out[r] = info.count
	}
	return out
}

// LogAll writes one consolidated warning per drop reason.
func (d DropStats) LogAll(log zerolog.Logger, source string) {
	for _, reason := range d.Reasons() {
		info := d.drops[reason]
		log.Warn().
			Str("source", source).
			Str("reason", string(reason)).
			Int("count", info.count).
			Str("examples", strings.Join(info.examples, ", ")).
			Msgf("feed %s has %s (%d occurrences); records skipped", source, describe(reason), info.count)
	}
}

func describe(reason DropReason) string {
	switch reason {
	case DropNotObject:
		return "items that are not objects"
	case DropBadTimeAdded:
		return "records with a missing or unparseable timeAdded"
	case DropBadLineSize:
		return "records with a non-numeric lineSize"
	case DropBadPartySize:
		return "records with a non-numeric partySize"
	default:
		return "unknown issue"
	}
}
