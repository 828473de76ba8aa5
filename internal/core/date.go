package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateFormat is the canonical ISO-8601 calendar date layout.
const DateFormat = "2006-01-02"

// lenient read layout, allows 2024-3-5.
const readDateFormat = "2006-1-2"

// Date is a calendar date with day granularity and no time zone.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date.
func NewDate(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date { return NewDate(t.Date()) }

// ParseDate parses a YYYY-MM-DD date. Empty input is ErrMissingDate.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingDate
	}
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: want format %s", ErrInvalidDate, s, DateFormat)
	}
	return DateOf(t), nil
}

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) IsZero() bool       { return d == Date{} }
func (d Date) Before(x Date) bool { return d.utc().Before(x.utc()) }
func (d Date) After(x Date) bool  { return d.utc().After(x.utc()) }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.utc().Format(DateFormat)
}

// YearMonth returns the YYYY-MM prefix of the date.
func (d Date) YearMonth() string { return d.utc().Format("2006-01") }

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, loc) }

// UnixMilli is the sort key of the date: midnight UTC in milliseconds.
func (d Date) UnixMilli() int64 { return d.utc().UnixMilli() }

func (d Date) utc() time.Time { return d.In(time.UTC) }

// MarshalJSON encodes the date as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
