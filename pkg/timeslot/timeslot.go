// Package timeslot provides clock-time parsing and range-overlap checks for
// the weekly lesson timetable. All functions are pure.
package timeslot

import (
	"strconv"
	"strings"
)

// ParseClockMinutes converts "HH:MM" or "HH:MM:SS" into minutes since
// midnight. Seconds are floored into whole minutes. The boolean is false for
// malformed input (fewer than two colon-separated parts or non-numeric
// parts).
func ParseClockMinutes(value string) (int, bool) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 {
		return 0, false
	}

	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}

	seconds := 0
	if len(parts) > 2 {
		seconds, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return 0, false
		}
	}

	return hours*60 + minutes + seconds/60, true
}

// Overlaps reports whether the two clock ranges intersect. Ranges are
// half-open: a range that starts exactly when another ends does not overlap
// it. Malformed times and inverted or empty ranges never overlap.
func Overlaps(startA, endA, startB, endB string) bool {
	aStart, okA := ParseClockMinutes(startA)
	aEnd, okB := ParseClockMinutes(endA)
	bStart, okC := ParseClockMinutes(startB)
	bEnd, okD := ParseClockMinutes(endB)

	if !okA || !okB || !okC || !okD {
		return false
	}
	if aStart >= aEnd || bStart >= bEnd {
		return false
	}

	return aStart < bEnd && bStart < aEnd
}
