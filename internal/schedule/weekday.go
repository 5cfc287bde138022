package schedule

import (
	"fmt"
	"time"
)

// Weekday is a Monday-first weekday key. Its zero value is Mon.
type Weekday int

const (
	Mon Weekday = iota
	Tue
	Wed
	Thu
	Fri
	Sat
	Sun
)

// DaysInWeek is the number of weekday keys.
const DaysInWeek = 7

var weekdayKeys = [DaysInWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var weekdayLabels = [DaysInWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Weekdays lists every key in Monday-first order.
var Weekdays = [DaysInWeek]Weekday{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

func (d Weekday) Valid() bool {
	return d >= Mon && d <= Sun
}

// String returns the 3-letter key ("Mon").
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayKeys[d]
}

// Label returns the display label ("Monday").
func (d Weekday) Label() string {
	if !d.Valid() {
		return ""
	}
	return weekdayLabels[d]
}

// ParseWeekday accepts the 3-letter key, case-sensitive.
func ParseWeekday(key string) (Weekday, error) {
	for i, k := range weekdayKeys {
		if k == key {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday key %q", key)
}

// WeekdayOf maps t's weekday onto the Monday-first key.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// TimeWeekday converts back to Go's Sunday-first weekday.
func (d Weekday) TimeWeekday() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}
