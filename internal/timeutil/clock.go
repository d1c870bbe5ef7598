// Package timeutil provides clock-time arithmetic for the day-view grid.
//
// Times are represented as minutes since midnight. Parsing is
// deliberately forgiving: calendar data comes from upstream forms and a
// malformed value must never crash a render pass.
package timeutil

import (
	"strconv"
	"strings"
)

// DefaultGridMinutes is the slot granularity of the day view.
const DefaultGridMinutes = 15

// DefaultDurationMinutes is assumed when a duration string carries no number.
const DefaultDurationMinutes = 30

// ParseClock parses a clock time into minutes since midnight.
// Accepts 24-hour "HH:mm" and 12-hour "h:mm AM/PM" (case-insensitive).
// Unparsable input yields 0; callers must treat 0 as either midnight or
// a parse failure.
func ParseClock(text string) int {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}

	upper := strings.ToUpper(s)
	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(upper, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(s[:len(s)-len(suffix)])
			break
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	if hour < 0 || minute < 0 || minute > 59 {
		return 0
	}

	switch meridiem {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	}
	if hour > 23 {
		return 0
	}

	return hour*60 + minute
}

// FormatClock formats minutes since midnight as "HH:mm".
// Values above 1439 are out of contract; no rollover past 24:00 is defined.
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hour := minutes / 60
	minute := minutes % 60
	return pad2(hour) + ":" + pad2(minute)
}

// ParseDurationText extracts the base duration in minutes from a free-form
// duration string ("60 phút", "90 min", "120") and adds extraMinutes.
// The first integer substring wins; if none is found the base defaults to 30.
func ParseDurationText(text string, extraMinutes int) int {
	base := firstInt(text)
	if base <= 0 {
		base = DefaultDurationMinutes
	}
	if extraMinutes < 0 {
		extraMinutes = 0
	}
	return base + extraMinutes
}

// AddMinutes returns startMinutes advanced by durationMinutes.
func AddMinutes(startMinutes, durationMinutes int) int {
	return startMinutes + durationMinutes
}

// SnapToGrid rounds minutes to the nearest multiple of gridMinutes.
// A non-positive gridMinutes falls back to DefaultGridMinutes.
func SnapToGrid(minutes, gridMinutes int) int {
	if gridMinutes <= 0 {
		gridMinutes = DefaultGridMinutes
	}
	half := gridMinutes / 2
	if minutes < 0 {
		return 0
	}
	return ((minutes + half) / gridMinutes) * gridMinutes
}

func firstInt(s string) int {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return 0
			}
			return n
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
