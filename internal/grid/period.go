package grid

import (
	"fmt"
	"time"
)

// periodLayouts are the period formats the upstream is known to emit.
// Every layout is zero-padded and ordered from most to least significant
// field, so lexicographic order of canonical strings matches time order.
var periodLayouts = []string{
	"2006-01-02T15",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339,
}

// ParsePeriod parses an upstream period label into a UTC time.
// The label must be in canonical form: formatting the parsed time with the
// matching layout has to reproduce the input exactly.
func ParsePeriod(raw string) (time.Time, error) {
	for _, layout := range periodLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Format(layout) != raw {
			return time.Time{}, fmt.Errorf("period %q is not in canonical %q form", raw, layout)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized period format %q", raw)
}

// FormatPeriod renders t in the hourly layout used by the upstream.
func FormatPeriod(t time.Time) string {
	return t.UTC().Format(periodLayouts[0])
}
