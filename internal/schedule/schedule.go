package schedule

import (
	"encoding/json"
	"fmt"
)

// DefaultFrom and DefaultTo bound the range appended by AddTimeRange.
const (
	DefaultFrom = "09:00"
	DefaultTo   = "17:00"
)

// TimeRange is a pair of "HH:MM" 24-hour clock strings. The model does not
// parse or validate them; see Validate.
type TimeRange struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// RangeField names one end of a TimeRange for UpdateTimeRange.
type RangeField string

const (
	FieldFrom RangeField = "from"
	FieldTo   RangeField = "to"
)

// DaySchedule is the availability of one day.
type DaySchedule struct {
	Enabled bool        `yaml:"enabled" json:"enabled"`
	Ranges  []TimeRange `yaml:"ranges" json:"ranges"`
}

// ActiveRanges returns the ranges in force; a disabled day has none even
// if Ranges is non-empty.
func (d DaySchedule) ActiveRanges() []TimeRange {
	if !d.Enabled {
		return nil
	}
	return d.Ranges
}

// Clone returns a copy whose Ranges do not share a backing array with d.
func (d DaySchedule) Clone() DaySchedule {
	out := DaySchedule{Enabled: d.Enabled, Ranges: make([]TimeRange, len(d.Ranges))}
	copy(out.Ranges, d.Ranges)
	return out
}

// MarshalJSON emits an empty array rather than null for no ranges.
func (d DaySchedule) MarshalJSON() ([]byte, error) {
	type plain DaySchedule
	p := plain(d)
	if p.Ranges == nil {
		p.Ranges = []TimeRange{}
	}
	return json.Marshal(p)
}

// WeekSchedule holds exactly one DaySchedule per Weekday.
type WeekSchedule [DaysInWeek]DaySchedule

// NewWeekSchedule returns a week with every day disabled and no ranges.
func NewWeekSchedule() WeekSchedule {
	return ClearAll(WeekSchedule{})
}

// Day returns the schedule for d, or the zero DaySchedule for an invalid key.
func (w WeekSchedule) Day(d Weekday) DaySchedule {
	if !d.Valid() {
		return DaySchedule{}
	}
	return w[d]
}

// Clone deep-copies every day.
func (w WeekSchedule) Clone() WeekSchedule {
	var out WeekSchedule
	for i := range w {
		out[i] = w[i].Clone()
	}
	return out
}

// ToMap keys the week by weekday key; used for JSON and YAML encoding.
func (w WeekSchedule) ToMap() map[string]DaySchedule {
	m := make(map[string]DaySchedule, DaysInWeek)
	for _, d := range Weekdays {
		m[d.String()] = w[d]
	}
	return m
}

// FromMap builds a WeekSchedule from a map that must contain all seven keys
// and nothing else.
func FromMap(m map[string]DaySchedule) (WeekSchedule, error) {
	var w WeekSchedule
	for key := range m {
		if _, err := ParseWeekday(key); err != nil {
			return w, err
		}
	}
	for _, d := range Weekdays {
		ds, ok := m[d.String()]
		if !ok {
			return w, fmt.Errorf("week schedule is missing %s", d)
		}
		w[d] = ds
	}
	return w, nil
}

func (w WeekSchedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.ToMap())
}

func (w *WeekSchedule) UnmarshalJSON(data []byte) error {
	var m map[string]DaySchedule
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := FromMap(m)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// PresetSchedule is a named, read-only template.
type PresetSchedule struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Schedule    WeekSchedule `json:"schedule"`
}
