package types

import (
	"strings"
	"time"
	_ "time/tzdata"
)

// DisplayLayout is how report timestamps are rendered.
const DisplayLayout = "2006-01-02 15:04:05"

var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999-0700",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values carrying a UTC offset
// keep their instant; values without one are read as wall-clock time in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.UTC
	}
	var firstErr error
	for _, layout := range offsetLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, firstErr
}

// LoadLocationOrUTC resolves an IANA zone name, falling back to UTC for empty
// or unknown names. "Local" is not an IANA name and would follow the host's
// TZ, so it is treated as unknown. The second result is false when the
// fallback was used.
func LoadLocationOrUTC(name string) (*time.Location, bool) {
	if strings.TrimSpace(name) == "" || name == "Local" {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

func StringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
