package core

import (
	"time"
)

// DayFormat is the canonical wire format for calendar dates.
const DayFormat = "2006-01-02"

// Day is a calendar date in canonical YYYY-MM-DD form. The zero value is
// the empty string, which means "no date".
type Day string

// NewDay truncates a time.Time to its calendar date.
func NewDay(t time.Time) Day {
	return Day(t.Format(DayFormat))
}

// ParseDay parses a canonical YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return "", err
	}
	return NewDay(t), nil
}

// Time returns the date at midnight UTC. Invalid days return the zero time.
func (d Day) Time() time.Time {
	t, err := time.Parse(DayFormat, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsZero checks if the day is unset.
func (d Day) IsZero() bool {
	return d == ""
}

// Before returns true if d is before other.
func (d Day) Before(other Day) bool {
	return string(d) < string(other)
}

// After returns true if d is after other.
func (d Day) After(other Day) bool {
	return string(d) > string(other)
}

// AddDays returns the day shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return NewDay(d.Time().AddDate(0, 0, n))
}

// StartOfWeek returns the Monday of the ISO week containing d.
func (d Day) StartOfWeek() Day {
	t := d.Time()
	offset := (int(t.Weekday()) + 6) % 7
	return NewDay(t.AddDate(0, 0, -offset))
}

// String returns the canonical representation.
func (d Day) String() string { return string(d) }
