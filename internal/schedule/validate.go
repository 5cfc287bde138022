package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RangeError describes one problem with a range of a given day.
type RangeError struct {
	Day    Weekday
	Index  int
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s range %d: %s", e.Day, e.Index, e.Reason)
}

// ParseClock converts "HH:MM" into minutes from midnight.
func ParseClock(v string) (int, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", v)
	}
	if !isDigits(parts[0]) || !isDigits(parts[1]) {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", v)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return hour*60 + minute, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateTimeRange checks format and from < to.
func ValidateTimeRange(r TimeRange) error {
	from, err := ParseClock(r.From)
	if err != nil {
		return err
	}
	to, err := ParseClock(r.To)
	if err != nil {
		return err
	}
	if from >= to {
		return fmt.Errorf("from %s is not before to %s", r.From, r.To)
	}
	return nil
}

// ValidateDay reports malformed, inverted and overlapping ranges. Disabled
// days are not checked since their ranges are ignored.
func ValidateDay(day Weekday, s DaySchedule) error {
	if !s.Enabled {
		return nil
	}

	type span struct{ idx, from, to int }
	var (
		errs  []error
		spans []span
	)
	for i, r := range s.Ranges {
		if err := ValidateTimeRange(r); err != nil {
			errs = append(errs, &RangeError{Day: day, Index: i, Reason: err.Error()})
			continue
		}
		from, _ := ParseClock(r.From)
		to, _ := ParseClock(r.To)
		spans = append(spans, span{idx: i, from: from, to: to})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].from < spans[j].from })
	// Compare each start with the furthest end seen so far, so ranges nested
	// inside a long one are all reported.
	reach := 0
	for i := 1; i < len(spans); i++ {
		if spans[i].from < spans[reach].to {
			errs = append(errs, &RangeError{
				Day:    day,
				Index:  spans[i].idx,
				Reason: fmt.Sprintf("overlaps range %d", spans[reach].idx),
			})
		}
		if spans[i].to > spans[reach].to {
			reach = i
		}
	}
	return errors.Join(errs...)
}

// Validate runs ValidateDay over the whole week. The mutation operations
// never call it; it is an opt-in report.
func Validate(w WeekSchedule) error {
	var errs []error
	for _, d := range Weekdays {
		if err := ValidateDay(d, w[d]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
