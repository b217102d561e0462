// Package clock handles the zero-padded "HH:MM" wall-clock strings used by
// the availability feed and booking records. All times are minute-resolution
// and share a single date, so lexicographic order equals chronological order.
package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// Minutes parses a "HH:MM" string into minutes since midnight.
func Minutes(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in clock value %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in clock value %q", s)
	}
	return h*60 + m, nil
}

// Format renders minutes since midnight as a zero-padded "HH:MM" string.
func Format(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Span returns end-start in minutes, or an error if either value is
// malformed or the range is inverted.
func Span(start, end string) (int, error) {
	s, err := Minutes(start)
	if err != nil {
		return 0, err
	}
	e, err := Minutes(end)
	if err != nil {
		return 0, err
	}
	if e < s {
		return 0, fmt.Errorf("clock range %s-%s is inverted", start, end)
	}
	return e - s, nil
}
