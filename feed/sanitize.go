package feed

import (
	"fmt"
	"sort"
	"time"
)

// Sanitize validates raw candidates and returns them as records sorted by
// TimeAdded. Invalid candidates are dropped.
func Sanitize(raw []any) []Record {
	out, _ := SanitizeWithStats(raw)
	return out
}

// SanitizeWithStats is Sanitize that also reports what was dropped and why.
// Zone-less timeAdded strings are read in time.Local.
func SanitizeWithStats(raw []any) ([]Record, DropStats) {
	return sanitizeIn(raw, time.Local)
}

func sanitizeIn(raw []any, loc *time.Location) ([]Record, DropStats) {
	var stats DropStats
	out := make([]Record, 0, len(raw))
	for i, item := range raw {
		r, ok := item.(map[string]any)
		if !ok || r == nil {
			stats.Add(DropNotObject, fmt.Sprintf("#%d", i))
			continue
		}
		t, ok := ParseTimestampIn(r["timeAdded"], loc)
		if !ok {
			stats.Add(DropBadTimeAdded, exampleID(r, i))
			continue
		}
		lineSize, ok := sizeField(r, "lineSize")
		if !ok {
			stats.Add(DropBadLineSize, exampleID(r, i))
			continue
		}
		partySize, ok := sizeField(r, "partySize")
		if !ok {
			stats.Add(DropBadPartySize, exampleID(r, i))
			continue
		}
		out = append(out, Record{
			ID:        r["id"],
			TimeAdded: t,
			LineSize:  lineSize,
			PartySize: partySize,
			CreatedAt: r["createdAt"],
			UpdatedAt: r["updatedAt"],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeAdded.Before(out[j].TimeAdded) })
	return out, stats
}

func sizeField(r map[string]any, key string) (float64, bool) {
	v, present := r[key]
	if !present {
		return 0, false
	}
	return toFinite(v)
}

func exampleID(r map[string]any, i int) string {
	if id, ok := r["id"]; ok && id != nil {
		return fmt.Sprint(id)
	}
	return fmt.Sprintf("#%d", i)
}
