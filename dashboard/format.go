package dashboard

import (
	"fmt"
	"strconv"
	"time"

	"github.com/theoremus-urban-solutions/transit-widgets/feed"
)

const (
	isoMillis    = "2006-01-02T15:04:05.000Z07:00"
	kpiTimeShort = "Mon, Jan 02, 15:04"
	kpiTimeLong  = "Mon Jan 2 2006, 15:04:05"
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// formatSpan renders a window span for status messages ("24 hours", "90m0s").
func formatSpan(d time.Duration) string {
	if d > 0 && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}

// shortSpan renders a span compactly for the OK status ("24h").
func shortSpan(d time.Duration) string {
	if d > 0 && d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return d.String()
}

func kpisFor(latest feed.Record, mode WindowMode, loc *time.Location) KPIs {
	k := KPIs{
		Line:   formatNumber(latest.LineSize),
		People: formatNumber(latest.PartySize),
		Avg:    placeholder,
	}
	if avg, ok := latest.AvgPartySize(); ok {
		k.Avg = fmt.Sprintf("%.2f", avg)
	}
	local := latest.TimeAdded.In(loc)
	if mode == WindowFixed {
		k.Time = "Last reading: " + local.Format(kpiTimeLong)
	} else {
		k.Time = local.Format(kpiTimeShort)
	}
	return k
}

func windowLine(w feed.Window) string {
	return fmt.Sprintf("Window: %s → %s", formatISO(w.Start), formatISO(w.End))
}
