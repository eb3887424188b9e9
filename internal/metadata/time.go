package metadata

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp layouts seen in EXIF and container metadata. Layouts with an
// explicit zone are tried first; the naive ones are interpreted in the
// file's GPS timezone when known, otherwise local time.
var (
	zonedLayouts = []string{
		"2006:01:02 15:04:05.999999999-07:00",
		"2006:01:02 15:04:05.999999999Z07:00",
		time.RFC3339,
	}
	naiveLayouts = []string{
		"2006:01:02 15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006:01:02",
	}
)

// ParseTimestamp converts a metadata timestamp string to a time.Time.
func ParseTimestamp(val, timezone string) (time.Time, error) {
	val = strings.TrimSpace(val)
	if val == "" || strings.HasPrefix(val, "0000") {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t, nil
		}
	}

	loc := time.Local
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, val, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable timestamp %q", val)
}

// earliestOf returns the earliest plausible date of the candidates,
// ignoring epoch garbage some cameras write.
func earliestOf(candidates []time.Time) time.Time {
	var earliest time.Time
	for _, t := range candidates {
		if t.Year() <= 1970 {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}
