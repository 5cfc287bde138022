package schedule

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPreset = errors.New("unknown preset")

const (
	PresetWeekdaysOnly = "Weekdays Only"
	PresetWeekendsOnly = "Weekends Only"
	PresetFullWeek     = "Full Week"
	PresetEveningsOnly = "Evenings Only"
)

var presetCatalog = []PresetSchedule{
	{
		Name:        PresetWeekdaysOnly,
		Description: "Monday to Friday, 9 AM - 5 PM",
		Schedule:    presetWeek([]Weekday{Mon, Tue, Wed, Thu, Fri}, "09:00", "17:00"),
	},
	{
		Name:        PresetWeekendsOnly,
		Description: "Saturday and Sunday, 10 AM - 8 PM",
		Schedule:    presetWeek([]Weekday{Sat, Sun}, "10:00", "20:00"),
	},
	{
		Name:        PresetFullWeek,
		Description: "Every day, 9 AM - 5 PM",
		Schedule:    presetWeek(Weekdays[:], "09:00", "17:00"),
	},
	{
		Name:        PresetEveningsOnly,
		Description: "Monday to Friday, 6 PM - 10 PM",
		Schedule:    presetWeek([]Weekday{Mon, Tue, Wed, Thu, Fri}, "18:00", "22:00"),
	},
}

func presetWeek(days []Weekday, from, to string) WeekSchedule {
	w := NewWeekSchedule()
	for _, d := range days {
		w[d] = DaySchedule{Enabled: true, Ranges: []TimeRange{{From: from, To: to}}}
	}
	return w
}

// Presets returns the built-in catalog. Each call returns fresh copies.
func Presets() []PresetSchedule {
	out := make([]PresetSchedule, len(presetCatalog))
	for i, p := range presetCatalog {
		out[i] = PresetSchedule{Name: p.Name, Description: p.Description, Schedule: p.Schedule.Clone()}
	}
	return out
}

// PresetByName looks a preset up case-insensitively.
func PresetByName(name string) (PresetSchedule, error) {
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return PresetSchedule{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}
