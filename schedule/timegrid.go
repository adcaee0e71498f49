package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Interval is one slot of a generated time grid, a half-open range
// [Start, End) expressed as 12-hour wall-clock strings.
type Interval struct {
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

// ParseClock converts a 12-hour wall-clock string such as "08:00 AM" to
// minutes since midnight. Clock strings are station-local opaque text; no
// timezone conversion is applied anywhere.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"03:04 PM", "3:04 PM"} {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("invalid clock time %q, expected \"HH:MM AM/PM\"", s)
}

// FormatClock converts minutes since midnight back to "HH:MM AM/PM".
func FormatClock(minutes int) string {
	hours := minutes / 60
	mins := minutes % 60
	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	display := hours % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%02d:%02d %s", display, mins, period)
}

// ValidRange reports whether opening is strictly before closing.
func ValidRange(opening, closing string) bool {
	o, err := ParseClock(opening)
	if err != nil {
		return false
	}
	c, err := ParseClock(closing)
	if err != nil {
		return false
	}
	return o < c
}

// TotalSlots returns how many full slots of durationMinutes fit between
// opening and closing, zero for an invalid range.
func TotalSlots(opening, closing string, durationMinutes int) int {
	o, err := ParseClock(opening)
	if err != nil {
		return 0
	}
	c, err := ParseClock(closing)
	if err != nil || o >= c || durationMinutes <= 0 {
		return 0
	}
	return (c - o) / durationMinutes
}

// Generate produces the ordered, contiguous, non-overlapping slot grid for
// one day. The last slot is clamped to the closing time, so it may be shorter
// than durationMinutes. An invalid range or unparsable input yields an empty
// grid rather than an error; rule creation validates upstream.
func Generate(opening, closing string, durationMinutes int) []Interval {
	var grid []Interval

	o, err := ParseClock(opening)
	if err != nil {
		return grid
	}
	c, err := ParseClock(closing)
	if err != nil || o >= c || durationMinutes <= 0 {
		return grid
	}

	for start := o; start < c; start += durationMinutes {
		end := start + durationMinutes
		if end > c {
			end = c
		}
		grid = append(grid, Interval{
			Start: FormatClock(start),
			End:   FormatClock(end),
		})
	}
	return grid
}
