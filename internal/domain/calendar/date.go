// Package calendar provides a UTC calendar date used for every day-count
// computation in billing. Values are normalised once, at the system boundary.
package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layout is the wire format of a Date.
const Layout = "2006-01-02"

const day = 24 * time.Hour

// Date is a calendar day anchored at UTC midnight. The zero value is the
// unset date.
type Date struct {
	t time.Time
}

// New builds a date from its parts.
func New(year int, month time.Month, dayOfMonth int) Date {
	return Date{t: time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)}
}

// Of strips the time of day from t, keeping the calendar day t has in UTC.
func Of(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	u := t.UTC()
	return New(u.Year(), u.Month(), u.Day())
}

// Today returns the current UTC day according to now.
func Today(now func() time.Time) Date {
	return Of(now())
}

// Parse accepts either a plain date or an RFC3339 timestamp.
func Parse(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(Layout, value); err == nil {
		return Of(t), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return Of(t), nil
}

// Time returns the UTC midnight instant of d.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether d is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// AddDays moves d by n calendar days.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date { return New(d.Year(), d.Month(), 1) }

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// DaysThrough counts the days from d to end, both included. It is zero or
// negative when end is before d.
func (d Date) DaysThrough(end Date) int {
	return int(end.t.Sub(d.t)/day) + 1
}

// MonthYear renders the billing cycle key, e.g. "10-2026".
func (d Date) MonthYear() string {
	return fmt.Sprintf("%02d-%04d", int(d.Month()), d.Year())
}

// Min returns the earlier date.
func Min(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// Max returns the later date.
func Max(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
