package ics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "availcal/internal/log"
	"availcal/internal/model"
	"availcal/internal/schedule"
)

const (
	defaultMaxWindows = 5000
)

// ExpandConfig controls how the weekly template is expanded.
type ExpandConfig struct {
	// DisplayLocation is the timezone in which dates and HH:MM clocks are
	// interpreted. If nil, time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the dates to expand, as [start, end).
	// Dates are taken at midnight in DisplayLocation.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxWindows caps the result. If zero, defaultMaxWindows is used.
	MaxWindows int
}

// ExpandResult wraps the expanded windows plus what was left out.
type ExpandResult struct {
	Windows []model.Window
	// Skipped lists "<date> range <i>" for ranges whose clocks could not be
	// turned into a valid interval.
	Skipped   []string
	Truncated bool
}

// ExpandAvailability resolves every date in the configured range against
// the weekly template and daily overrides and returns concrete windows.
//
//   - Template dates come from a WEEKLY RRULE whose BYDAY lists the enabled
//     template days, with an EXDATE for every overridden date.
//   - Overridden dates take their windows from the override only.
//   - Disabled days contribute nothing, whatever their ranges.
func ExpandAvailability(week schedule.WeekSchedule, overrides schedule.DailyOverrides, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxWindows <= 0 {
		cfg.MaxWindows = defaultMaxWindows
	}

	loc := cfg.DisplayLocation
	first := midnight(cfg.RangeStart.In(loc))
	end := cfg.RangeEnd.In(loc)

	windows := make([]model.Window, 0)

	dates, err := templateDates(week, overrides, first, end)
	if err != nil {
		return result, err
	}
	for _, date := range dates {
		ds := week[schedule.WeekdayOf(date)]
		windows = append(windows, dayWindows(date, ds, false, &result.Skipped)...)
	}

	for _, date := range overrideDates(overrides, loc, first, end) {
		ds := overrides[schedule.DateKey(date)]
		windows = append(windows, dayWindows(date, ds, true, &result.Skipped)...)
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})

	if len(windows) > cfg.MaxWindows {
		windows = windows[:cfg.MaxWindows]
		result.Truncated = true
		appLog.Error("expand: truncated availability windows due to cap",
			errors.New("max windows reached"),
			"cap", cfg.MaxWindows,
		)
	}

	result.Windows = windows
	return result, nil
}

// templateDates returns the midnights in [first, end) on which the weekly
// template applies and has at least one active range.
func templateDates(week schedule.WeekSchedule, overrides schedule.DailyOverrides, first, end time.Time) ([]time.Time, error) {
	byDay := make([]rrule.Weekday, 0, schedule.DaysInWeek)
	for _, d := range schedule.Weekdays {
		if len(week[d].ActiveRanges()) > 0 {
			byDay = append(byDay, rruleWeekday(d))
		}
	}
	if len(byDay) == 0 || !first.Before(end) {
		return nil, nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byDay,
		Dtstart:   first,
		Until:     end,
	})
	if err != nil {
		return nil, fmt.Errorf("expand: build weekly rule: %w", err)
	}

	var set rrule.Set
	set.RRule(r)
	for _, date := range overrideDates(overrides, first.Location(), first, end) {
		set.ExDate(date)
	}

	dates := set.Between(first, end, true)
	out := dates[:0]
	for _, d := range dates {
		if d.Before(end) {
			out = append(out, d)
		}
	}
	return out, nil
}

// overrideDates returns the override keys in [first, end) as sorted midnights.
func overrideDates(overrides schedule.DailyOverrides, loc *time.Location, first, end time.Time) []time.Time {
	out := make([]time.Time, 0, len(overrides))
	for key := range overrides {
		date, err := schedule.ParseDateKey(key, loc)
		if err != nil {
			appLog.Error("expand: ignoring override with bad date key", err, "key", key)
			continue
		}
		if date.Before(first) || !date.Before(end) {
			continue
		}
		out = append(out, date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func dayWindows(date time.Time, ds schedule.DaySchedule, overridden bool, skipped *[]string) []model.Window {
	key := schedule.DateKey(date)
	var out []model.Window
	for i, r := range ds.ActiveRanges() {
		if err := schedule.ValidateTimeRange(r); err != nil {
			appLog.Error("expand: skipping invalid range", err, "date", key, "index", i, "from", r.From, "to", r.To)
			*skipped = append(*skipped, fmt.Sprintf("%s range %d", key, i))
			continue
		}
		from, _ := schedule.ParseClock(r.From)
		to, _ := schedule.ParseClock(r.To)
		out = append(out, model.Window{
			DateKey:    key,
			Start:      atClock(date, from),
			End:        atClock(date, to),
			Overridden: overridden,
		})
	}
	return out
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func atClock(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location())
}

func rruleWeekday(d schedule.Weekday) rrule.Weekday {
	switch d {
	case schedule.Mon:
		return rrule.MO
	case schedule.Tue:
		return rrule.TU
	case schedule.Wed:
		return rrule.WE
	case schedule.Thu:
		return rrule.TH
	case schedule.Fri:
		return rrule.FR
	case schedule.Sat:
		return rrule.SA
	default:
		return rrule.SU
	}
}
