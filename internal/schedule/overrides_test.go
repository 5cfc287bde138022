package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayOf(t *testing.T) {
	// 2025-06-02 is a Monday.
	base := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	for i, want := range Weekdays {
		assert.Equal(t, want, WeekdayOf(base.AddDate(0, 0, i)))
		assert.Equal(t, base.AddDate(0, 0, i).Weekday(), want.TimeWeekday())
	}
}

func TestEffectiveDaySchedule(t *testing.T) {
	w := sampleWeek()
	date := time.Date(2025, 6, 4, 9, 30, 0, 0, time.UTC) // Wednesday

	got, overridden := Resolve(date, w, nil)
	assert.False(t, overridden)
	assert.Equal(t, w[Wed], got)

	s := DaySchedule{Enabled: false, Ranges: []TimeRange{}}
	overrides := SetOverride(DailyOverrides{}, date, s)
	assert.Equal(t, s, EffectiveDaySchedule(date, w, overrides))
	assert.Contains(t, overrides, "2025-06-04")

	// A week later the template still applies.
	assert.Equal(t, w[Wed], EffectiveDaySchedule(date.AddDate(0, 0, 7), w, overrides))

	overrides = ClearOverride(overrides, date)
	assert.Equal(t, w[Wed], EffectiveDaySchedule(date, w, overrides))
}

func TestOverridesArePure(t *testing.T) {
	d1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	a := SetOverride(nil, d1, DaySchedule{Enabled: true})
	b := SetOverride(a, d2, DaySchedule{Enabled: true})
	assert.Len(t, a, 1)
	assert.Len(t, b, 2)

	c := ClearOverride(b, d1)
	assert.Len(t, b, 2)
	assert.Len(t, c, 1)

	same := ClearOverride(c, d1.AddDate(1, 0, 0))
	assert.Equal(t, c, same)

	assert.Empty(t, ClearAllOverrides())
	assert.NotNil(t, ClearAllOverrides())
}

func TestParseDateKey(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	got, err := ParseDateKey("2025-12-31", loc)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", DateKey(got))
	assert.Equal(t, loc, got.Location())

	_, err = ParseDateKey("2025/12/31", loc)
	assert.Error(t, err)
}

func TestDisabledDayIgnoresRanges(t *testing.T) {
	d := DaySchedule{Enabled: false, Ranges: []TimeRange{{From: "09:00", To: "10:00"}}}
	assert.Nil(t, d.ActiveRanges())

	d.Enabled = true
	assert.Len(t, d.ActiveRanges(), 1)
}
