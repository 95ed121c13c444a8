package board

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const (
	timeFull    = "3:04:05 PM"
	timeCompact = "15:04:05"
	noDelay     = "—"
)

// formatUnixTime renders unix seconds as a wall-clock time in loc.
func formatUnixTime(unix int64, loc *time.Location, layout string) string {
	if unix == 0 {
		return "Unknown"
	}
	return time.Unix(unix, 0).In(loc).Format(layout)
}

// timeUntil renders the countdown from now to unix, e.g. "in 3m 5s" or
// "in -1m 2s" once the time has passed.
func timeUntil(unix int64, now time.Time) string {
	if unix == 0 {
		return "N/A"
	}
	diff := int64(math.Floor(float64(unix) - float64(now.UnixMilli())/1000))
	neg := ""
	if diff < 0 {
		neg = "-"
		diff = -diff
	}
	return fmt.Sprintf("in %s%dm %ds", neg, diff/60, diff%60)
}

func formatDelay(seconds *int32) string {
	if seconds == nil {
		return noDelay
	}
	if *seconds == 0 {
		return "on time"
	}
	s := strconv.Itoa(int(*seconds)) + "s"
	if *seconds > 0 {
		return "+" + s
	}
	return s
}
