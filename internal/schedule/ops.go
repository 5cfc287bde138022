package schedule

// The operations below never mutate their input. Days they do not touch keep
// their Ranges slices, so callers may compare them by identity.

// SetDay replaces the schedule of day.
func SetDay(w WeekSchedule, day Weekday, s DaySchedule) WeekSchedule {
	if !day.Valid() {
		return w
	}
	w[day] = s
	return w
}

// AddTimeRange appends the default 09:00-17:00 range to day. Enabled is left
// as it was.
func AddTimeRange(w WeekSchedule, day Weekday) WeekSchedule {
	if !day.Valid() {
		return w
	}
	cur := w[day]
	ranges := make([]TimeRange, len(cur.Ranges), len(cur.Ranges)+1)
	copy(ranges, cur.Ranges)
	ranges = append(ranges, TimeRange{From: DefaultFrom, To: DefaultTo})
	w[day] = DaySchedule{Enabled: cur.Enabled, Ranges: ranges}
	return w
}

// RemoveTimeRange drops the range at index. An out-of-range index returns w
// unchanged.
func RemoveTimeRange(w WeekSchedule, day Weekday, index int) WeekSchedule {
	if !day.Valid() {
		return w
	}
	cur := w[day]
	if index < 0 || index >= len(cur.Ranges) {
		return w
	}
	ranges := make([]TimeRange, 0, len(cur.Ranges)-1)
	ranges = append(ranges, cur.Ranges[:index]...)
	ranges = append(ranges, cur.Ranges[index+1:]...)
	w[day] = DaySchedule{Enabled: cur.Enabled, Ranges: ranges}
	return w
}

// UpdateTimeRange sets one end of the range at index to value. Neither the
// format nor the ordering of value is checked. Out-of-range indices and
// unknown fields leave w unchanged.
func UpdateTimeRange(w WeekSchedule, day Weekday, index int, field RangeField, value string) WeekSchedule {
	if !day.Valid() {
		return w
	}
	cur := w[day]
	if index < 0 || index >= len(cur.Ranges) {
		return w
	}
	if field != FieldFrom && field != FieldTo {
		return w
	}
	next := cur.Clone()
	if field == FieldFrom {
		next.Ranges[index].From = value
	} else {
		next.Ranges[index].To = value
	}
	w[day] = next
	return w
}

// ClearAll disables every day and drops all ranges.
func ClearAll(_ WeekSchedule) WeekSchedule {
	var out WeekSchedule
	for i := range out {
		out[i] = DaySchedule{Enabled: false, Ranges: []TimeRange{}}
	}
	return out
}

// CopyDayToWeek gives every other day the source day's flag and its own copy
// of the source ranges.
func CopyDayToWeek(w WeekSchedule, source Weekday) WeekSchedule {
	if !source.Valid() {
		return w
	}
	src := w[source]
	for _, d := range Weekdays {
		if d == source {
			continue
		}
		w[d] = src.Clone()
	}
	return w
}

// ApplyPreset returns the preset's schedule, discarding prior edits. The
// result is a deep copy so later edits cannot reach the catalog.
func ApplyPreset(p PresetSchedule) WeekSchedule {
	return p.Schedule.Clone()
}
