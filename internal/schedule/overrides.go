package schedule

import (
	"fmt"
	"time"
)

// DateKeyLayout is the layout of DailyOverrides keys.
const DateKeyLayout = "2006-01-02"

// DailyOverrides maps a YYYY-MM-DD date key to the schedule that replaces the
// weekly template on that date. A missing key means no override.
type DailyOverrides map[string]DaySchedule

// DateKey formats t as YYYY-MM-DD in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD key at midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// EffectiveDaySchedule returns the override for date if present, otherwise
// the template entry for date's weekday.
func EffectiveDaySchedule(date time.Time, w WeekSchedule, overrides DailyOverrides) DaySchedule {
	s, _ := Resolve(date, w, overrides)
	return s
}

// Resolve is EffectiveDaySchedule that also reports whether an override won.
func Resolve(date time.Time, w WeekSchedule, overrides DailyOverrides) (DaySchedule, bool) {
	if s, ok := overrides[DateKey(date)]; ok {
		return s, true
	}
	return w[WeekdayOf(date)], false
}

// SetOverride returns a copy of overrides with date's entry set to s.
func SetOverride(overrides DailyOverrides, date time.Time, s DaySchedule) DailyOverrides {
	out := make(DailyOverrides, len(overrides)+1)
	for k, v := range overrides {
		out[k] = v
	}
	out[DateKey(date)] = s
	return out
}

// ClearOverride returns overrides without date's entry. Absent entries leave
// overrides as is.
func ClearOverride(overrides DailyOverrides, date time.Time) DailyOverrides {
	key := DateKey(date)
	if _, ok := overrides[key]; !ok {
		return overrides
	}
	out := make(DailyOverrides, len(overrides)-1)
	for k, v := range overrides {
		if k != key {
			out[k] = v
		}
	}
	return out
}

func ClearAllOverrides() DailyOverrides {
	return DailyOverrides{}
}
