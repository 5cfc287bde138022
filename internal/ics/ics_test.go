package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"availcal/internal/model"
	"availcal/internal/schedule"
)

func mustPreset(t *testing.T, name string) schedule.WeekSchedule {
	t.Helper()
	p, err := schedule.PresetByName(name)
	require.NoError(t, err)
	return schedule.ApplyPreset(p)
}

func TestExpandAvailabilityTemplateOnly(t *testing.T) {
	week := mustPreset(t, schedule.PresetWeekdaysOnly)

	// 2025-06-02 is a Monday; two full weeks.
	res, err := ExpandAvailability(week, nil, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		RangeEnd:        time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Windows, 10)
	assert.False(t, res.Truncated)
	assert.Empty(t, res.Skipped)

	first := res.Windows[0]
	assert.Equal(t, "2025-06-02", first.DateKey)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), first.Start.UTC())
	assert.Equal(t, time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC), first.End.UTC())

	for _, w := range res.Windows {
		wd := schedule.WeekdayOf(w.Start)
		assert.NotEqual(t, schedule.Sat, wd)
		assert.NotEqual(t, schedule.Sun, wd)
		assert.False(t, w.Overridden)
	}
}

func TestExpandAvailabilityOverrides(t *testing.T) {
	week := mustPreset(t, schedule.PresetWeekdaysOnly)
	wed := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	sat := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)

	overrides := schedule.SetOverride(nil, wed, schedule.DaySchedule{Enabled: false})
	overrides = schedule.SetOverride(overrides, sat, schedule.DaySchedule{
		Enabled: true,
		Ranges:  []schedule.TimeRange{{From: "10:00", To: "12:00"}, {From: "bad", To: "13:00"}},
	})
	// Outside the range; ignored.
	overrides = schedule.SetOverride(overrides, wed.AddDate(0, 1, 0), schedule.DaySchedule{Enabled: true})

	res, err := ExpandAvailability(week, overrides, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		RangeEnd:        time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	keys := make([]string, 0, len(res.Windows))
	for _, w := range res.Windows {
		keys = append(keys, w.DateKey)
	}
	assert.Equal(t, []string{"2025-06-02", "2025-06-03", "2025-06-05", "2025-06-06", "2025-06-07"}, keys)

	last := res.Windows[len(res.Windows)-1]
	assert.True(t, last.Overridden)
	assert.Equal(t, 10, last.Start.Hour())
	assert.Equal(t, []string{"2025-06-07 range 1"}, res.Skipped)
}

func TestExpandAvailabilityDisplayLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	week := schedule.NewWeekSchedule()
	week = schedule.SetDay(week, schedule.Mon, schedule.DaySchedule{
		Enabled: true,
		Ranges:  []schedule.TimeRange{{From: "08:30", To: "09:15"}},
	})

	res, err := ExpandAvailability(week, nil, ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC), // Monday 05:00 in Seoul
		RangeEnd:        time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Windows, 1)
	assert.Equal(t, loc.String(), res.Windows[0].Start.Location().String())
	assert.Equal(t, time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC), res.Windows[0].Start.UTC())
}

func TestExpandAvailabilityCapAndErrors(t *testing.T) {
	week := mustPreset(t, schedule.PresetFullWeek)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	res, err := ExpandAvailability(week, nil, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        start.AddDate(0, 0, 30),
		MaxWindows:      5,
	})
	require.NoError(t, err)
	assert.Len(t, res.Windows, 5)
	assert.True(t, res.Truncated)

	_, err = ExpandAvailability(week, nil, ExpandConfig{RangeStart: start, RangeEnd: start.Add(-time.Hour)})
	assert.Error(t, err)

	res, err = ExpandAvailability(schedule.NewWeekSchedule(), nil, ExpandConfig{RangeStart: start, RangeEnd: start.AddDate(0, 0, 7)})
	require.NoError(t, err)
	assert.Empty(t, res.Windows)

	signed := schedule.NewWeekSchedule()
	signed[schedule.Wed] = schedule.DaySchedule{Enabled: true, Ranges: []schedule.TimeRange{{From: "+9:00", To: "17:00"}}}
	res, err = ExpandAvailability(signed, nil, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        start.AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Windows)
	assert.Equal(t, []string{"2025-01-01 range 0"}, res.Skipped)
}

func TestExportAndParseRoundTrip(t *testing.T) {
	windows := []model.Window{{
		DateKey: "2025-06-02",
		Start:   time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC),
	}}
	blackouts := []model.Blackout{
		{ID: "b1", StartAt: "2025-06-03T00:00:00Z", EndAt: "2025-06-04T00:00:00Z", Reason: "Vacation"},
		{ID: "b2", StartAt: "tomorrow", EndAt: "later"},
	}

	out := Export(windows, blackouts, ExportOptions{
		CalendarName: "Availability",
		Now:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "UID:avail-2025-06-02-0900-1700@availcal")
	assert.Contains(t, out, "SUMMARY:Available")
	assert.Contains(t, out, "UID:b1@availcal")
	assert.Contains(t, out, "SUMMARY:Vacation")
	assert.NotContains(t, out, "b2@availcal")

	periods, err := ParseBlackouts([]byte(out))
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "2025-06-03T00:00:00Z", periods[1].StartAt)
	assert.Equal(t, "2025-06-04T00:00:00Z", periods[1].EndAt)
	assert.Equal(t, "Vacation", periods[1].Reason)
}

func TestParseBlackoutsAllDay(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:holiday-1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART;VALUE=DATE:20250815",
		"SUMMARY:Holiday",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:broken-1",
		"DTSTAMP:20250101T000000Z",
		"SUMMARY:No start",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	periods, err := ParseBlackouts([]byte(body))
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, "Holiday", periods[0].Reason)
	assert.True(t, strings.HasPrefix(periods[0].StartAt, "2025-08-15T00:00:00"))
	assert.True(t, strings.HasPrefix(periods[0].EndAt, "2025-08-16T00:00:00"))

	_, err = ParseBlackouts(nil)
	assert.Error(t, err)
}
