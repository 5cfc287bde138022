package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Navigation is the reference date of a calendar view. Methods return a new
// value; the zero WeekStart is Sunday, matching time.Weekday.
type Navigation struct {
	Current   time.Time
	WeekStart time.Weekday
}

// ParseWeekStart maps the config values "monday" and "sunday".
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monday", "":
		return time.Monday, nil
	case "sunday":
		return time.Sunday, nil
	default:
		return time.Monday, fmt.Errorf("unsupported week start %q", s)
	}
}

func NewNavigation(current time.Time, weekStart time.Weekday) Navigation {
	return Navigation{Current: current, WeekStart: weekStart}
}

func (n Navigation) PreviousWeek() Navigation {
	n.Current = n.Current.AddDate(0, 0, -7)
	return n
}

func (n Navigation) NextWeek() Navigation {
	n.Current = n.Current.AddDate(0, 0, 7)
	return n
}

// Today moves the reference date to now, kept in the current location.
func (n Navigation) Today(now time.Time) Navigation {
	if loc := n.Current.Location(); loc != nil && !n.Current.IsZero() {
		now = now.In(loc)
	}
	n.Current = now
	return n
}

func (n Navigation) StartOfWeek() time.Time {
	return StartOfWeek(n.Current, n.WeekStart)
}

func (n Navigation) WeekDays() []time.Time {
	return WeekDays(n.Current, n.WeekStart)
}

// StartOfWeek returns midnight of the first day of t's week in t's location.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	back := (int(midnight.Weekday()) - int(weekStart) + 7) % 7
	return midnight.AddDate(0, 0, -back)
}

// WeekDays returns the seven consecutive midnights of t's week.
func WeekDays(t time.Time, weekStart time.Weekday) []time.Time {
	start := StartOfWeek(t, weekStart)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}
