package core

import (
	"strings"
	"time"
)

// Period is a statistics window ending at "now".
type Period int

const (
	// PeriodAll means no period filtering. It is what unrecognized
	// period names resolve to.
	PeriodAll Period = iota
	PeriodDay
	PeriodWeek
	PeriodMonth
	PeriodYear
)

// ParsePeriod never fails: unknown names map to PeriodAll.
func ParsePeriod(s string) Period {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily":
		return PeriodDay
	case "week", "weekly":
		return PeriodWeek
	case "month", "monthly":
		return PeriodMonth
	case "year", "yearly":
		return PeriodYear
	default:
		return PeriodAll
	}
}

func (p Period) String() string {
	switch p {
	case PeriodDay:
		return "day"
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	case PeriodYear:
		return "year"
	default:
		return "all"
	}
}

// Calendar computes period boundaries in a fixed location. Weeks start on
// Monday and end on Sunday.
//
// Boundaries are computed with calendar arithmetic (time.Date), so a window
// start is always local midnight even across DST changes. Behaviour for
// local times that do not exist on a DST transition day follows time.Date
// normalization.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a calendar for loc. A nil loc means time.Local.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{loc: loc}
}

// Location returns the calendar time zone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// Today returns the calendar date of now in the calendar location.
func (c Calendar) Today(now time.Time) Date { return DateOf(now.In(c.Location())) }

// Midnight returns the instant d starts in the calendar location.
func (c Calendar) Midnight(d Date) time.Time { return d.In(c.Location()) }

// StartOf returns the inclusive start of the period containing now.
// ok is false for PeriodAll.
func (c Calendar) StartOf(p Period, now time.Time) (start time.Time, ok bool) {
	n := now.In(c.Location())
	y, m, d := n.Date()
	switch p {
	case PeriodDay:
		return time.Date(y, m, d, 0, 0, 0, 0, c.Location()), true
	case PeriodWeek:
		offset := (int(n.Weekday()) + 6) % 7 // days since Monday
		return time.Date(y, m, d-offset, 0, 0, 0, 0, c.Location()), true
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, c.Location()), true
	case PeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, c.Location()), true
	default:
		return time.Time{}, false
	}
}
