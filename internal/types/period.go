package types

import (
	"fmt"
	"strings"
	"time"
)

// ReportPeriod is the calendar month a report covers.
type ReportPeriod struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Validate checks the month is within 1..12 and the year is a plausible
// four-digit year.
func (p ReportPeriod) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d is not in 1..12", ErrInvalidPeriod, p.Month)
	}
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d is out of range", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// IsZero reports whether the period was never set.
func (p ReportPeriod) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Contains reports whether t, in its own location, falls in the period.
func (p ReportPeriod) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// MonthAbbr is the lowercase three-letter month name, e.g. "apr".
func (p ReportPeriod) MonthAbbr() string {
	if p.Month < 1 || p.Month > 12 {
		return ""
	}
	return strings.ToLower(time.Month(p.Month).String()[:3])
}

func (p ReportPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
