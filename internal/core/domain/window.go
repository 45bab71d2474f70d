package domain

import (
	"fmt"
	"strings"
	"time"
)

// Period names an aggregation window relative to "now".
type Period string

const (
	Today Period = "TODAY"
	Week  Period = "WEEK"
	Month Period = "MONTH"
)

// ParsePeriod maps a case-insensitive keyword (today, week, month) to a Period.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToUpper(strings.TrimSpace(s))); p {
	case Today, Week, Month:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window. End is exclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowFor computes the window of period containing now, evaluated in loc.
//
// TODAY starts at dayStartHour local time and lasts one calendar day; when now is
// earlier than that hour the window of the previous day is returned. WEEK starts on
// Monday at midnight and MONTH on the first of the month at midnight.
func WindowFor(period Period, now time.Time, loc *time.Location, dayStartHour int) (Window, error) {
	if loc == nil {
		return Window{}, fmt.Errorf("reference timezone is required")
	}
	if dayStartHour < 0 || dayStartHour > 23 {
		return Window{}, fmt.Errorf("day start hour %d out of range [0, 23]", dayStartHour)
	}

	now = now.In(loc)
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch period {
	case Today:
		start := time.Date(y, m, d, dayStartHour, 0, 0, 0, loc)
		if now.Before(start) {
			start = start.AddDate(0, 0, -1)
		}
		return Window{Start: start, End: start.AddDate(0, 0, 1)}, nil
	case Week:
		// time.Weekday starts on Sunday; shift so Monday is 0.
		offset := (int(now.Weekday()) + 6) % 7
		start := midnight.AddDate(0, 0, -offset)
		return Window{Start: start, End: start.AddDate(0, 0, 7)}, nil
	case Month:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
	default:
		return Window{}, fmt.Errorf("unknown period %q", period)
	}
}
