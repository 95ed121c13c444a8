package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampSecondsAndMillis(t *testing.T) {
	want := time.Unix(1700000000, 0).UTC()

	secs, ok := ParseTimestamp(1700000000.0)
	require.True(t, ok)
	assert.True(t, want.Equal(secs), "got %v", secs)
	assert.Equal(t, time.November, secs.Month())
	assert.Equal(t, 2023, secs.Year())

	millis, ok := ParseTimestamp(2.1e12)
	require.True(t, ok)
	assert.True(t, time.UnixMilli(2.1e12).Equal(millis), "got %v", millis)
	assert.Equal(t, 2036, millis.Year())
}

func TestParseTimestampMillisMagnitudeBelowThresholdIsSeconds(t *testing.T) {
	want := time.Unix(1.7e12, 0).UTC()

	fromNumber, ok := ParseTimestamp(1.7e12)
	require.True(t, ok)
	assert.True(t, want.Equal(fromNumber), "got %v", fromNumber)
	assert.Equal(t, 55840, fromNumber.Year())

	fromString, ok := ParseTimestamp("1700000000000")
	require.True(t, ok)
	assert.True(t, fromNumber.Equal(fromString))
}

func TestParseTimestampThreshold(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  time.Time
	}{
		{name: "just below threshold is seconds", input: 1999999999999, want: time.UnixMilli(1999999999999 * 1000)},
		{name: "threshold is milliseconds", input: 2e12, want: time.UnixMilli(2e12)},
		{name: "small value is seconds", input: 1, want: time.Unix(1, 0)},
		{name: "negative value is seconds", input: -86400, want: time.Unix(-86400, 0)},
		{name: "fractional seconds truncate to milliseconds", input: 1.0015, want: time.UnixMilli(1001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}
}

func TestParseTimestampNumericTypes(t *testing.T) {
	tests := []struct {
		input any
		want  time.Time
	}{
		{input: 1700000000, want: time.Unix(1700000000, 0)},
		{input: int64(1700000000), want: time.Unix(1700000000, 0)},
		{input: json.Number("1700000000"), want: time.Unix(1700000000, 0)},
		{input: json.Number("2100000000000"), want: time.UnixMilli(2.1e12)},
		{input: int64(2e12), want: time.UnixMilli(2e12)},
		{input: float32(2.1e12), want: time.UnixMilli(2.1e12)},
	}
	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.input)
		require.True(t, ok, "%T %v", tt.input, tt.input)
		// float32 cannot hold every millisecond at this magnitude
		assert.WithinDuration(t, tt.want, got, 200*time.Second, "%T %v", tt.input, tt.input)
	}
}

func TestParseTimestampDigitStrings(t *testing.T) {
	for _, s := range []string{"1700000000", "1700000000000", "0001", "1999999999999", "2000000000000", " 1700000000 "} {
		t.Run(s, func(t *testing.T) {
			fromString, okS := ParseTimestamp(s)
			n, err := json.Number(trimmed(s)).Float64()
			require.NoError(t, err)
			fromNumber, okN := ParseTimestamp(n)
			require.Equal(t, okN, okS)
			assert.True(t, fromNumber.Equal(fromString))
		})
	}
}

func trimmed(s string) string {
	out := []byte{}
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

func TestParseTimestampAbsent(t *testing.T) {
	for _, in := range []any{nil, false, true, 0, 0.0, "", "   ", "not a date", "12abc", map[string]any{}, []any{1.0}} {
		_, ok := ParseTimestamp(in)
		assert.False(t, ok, "%T %v", in, in)
	}
}

func TestParseTimestampCalendarStrings(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*60*60)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "rfc3339 utc", input: "2024-01-01T00:00:00Z", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 millis", input: "2024-01-01T12:30:00.250Z", want: time.Date(2024, 1, 1, 12, 30, 0, 250e6, time.UTC)},
		{name: "rfc3339 offset", input: "2024-01-01T02:00:00+02:00", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "offset without colon", input: "2024-01-01T00:00:00+0000", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "offset without colon and millis", input: "2024-01-01T02:00:00.500+0200", want: time.Date(2024, 1, 1, 0, 0, 0, 500e6, time.UTC)},
		{name: "space separated hour offset", input: "2024-01-01 05:00:00+05", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "date only is utc", input: "2024-03-05", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{name: "zone-less uses location", input: "2024-01-01T10:00:00", want: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		{name: "space separated uses location", input: "2024-01-01 10:00:00", want: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		{name: "rfc1123", input: "Mon, 01 Jan 2024 00:00:00 GMT", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestampIn(tt.input, plus2)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}
