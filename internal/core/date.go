package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO representation used everywhere dates are serialized.
const DateFormat = "2006-01-02"

// Date is a calendar date with day granularity. The embedded time is always
// midnight UTC.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day. Out-of-range values are
// normalized the way time.Date normalizes them.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// AddMonths shifts the date by n calendar months, normalizing overflow
// (Jan 31 + 1 month lands in early March, matching time.AddDate).
func (d Date) AddMonths(n int) Date {
	return DateOf(d.Time.AddDate(0, n, 0))
}

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time.AddDate(0, 0, n))
}

// MonthKey returns the "YYYY-MM" bucket key for monthly grouping.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
}

// String formats the date as ISO YYYY-MM-DD.
func (d Date) String() string {
	return d.Time.Format(DateFormat)
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
