package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "9:30", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "0930", wantErr: true},
		{in: "", wantErr: true},
		{in: "+9:00", wantErr: true},
		{in: "09:-5", wantErr: true},
		{in: " 9:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(sampleWeek()))

	w := sampleWeek()
	w[Tue] = DaySchedule{Enabled: true, Ranges: []TimeRange{
		{From: "12:00", To: "15:00"},
		{From: "09:00", To: "13:00"},
		{From: "18:00", To: "17:00"},
	}}
	// Disabled days are not checked.
	w[Sat] = DaySchedule{Enabled: false, Ranges: []TimeRange{{From: "bad", To: "worse"}}}

	err := Validate(w)
	require.Error(t, err)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, Tue, rangeErr.Day)
	assert.Contains(t, err.Error(), "Tue range 2: from 18:00 is not before to 17:00")
	assert.Contains(t, err.Error(), "Tue range 0: overlaps range 1")
	assert.NotContains(t, err.Error(), "Sat")
}

func TestValidateDayNestedOverlaps(t *testing.T) {
	err := ValidateDay(Mon, DaySchedule{Enabled: true, Ranges: []TimeRange{
		{From: "09:00", To: "17:00"},
		{From: "10:00", To: "11:00"},
		{From: "12:00", To: "13:00"},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mon range 1: overlaps range 0")
	assert.Contains(t, err.Error(), "Mon range 2: overlaps range 0")

	assert.NoError(t, ValidateDay(Mon, DaySchedule{Enabled: true, Ranges: []TimeRange{
		{From: "09:00", To: "10:00"},
		{From: "10:00", To: "11:00"},
	}}))
}

func TestValidateRejectsSignedClock(t *testing.T) {
	w := NewWeekSchedule()
	w[Wed] = DaySchedule{Enabled: true, Ranges: []TimeRange{{From: "+9:00", To: "17:00"}}}
	assert.ErrorContains(t, Validate(w), "Wed range 0")
}
