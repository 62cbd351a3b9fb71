package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day, normalised to midnight UTC.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its calendar parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return DateOf(t), nil
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) After(o Date) bool { return d.t.After(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Interval is a half-open date range [Start, End).
type Interval struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// Overlaps reports whether two half-open intervals share at least one day.
// Adjacent intervals (one ends the day the other starts) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Nights is the number of days covered by the interval.
func (i Interval) Nights() int {
	return int(i.End.t.Sub(i.Start.t).Hours() / 24)
}
