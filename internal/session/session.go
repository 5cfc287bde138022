package session

import (
	"context"
	"sync"
	"time"

	"availcal/internal/blackout"
	"availcal/internal/calendar"
	"availcal/internal/model"
	"availcal/internal/schedule"
)

// Session is one editing session. It owns the latest template, overrides
// and navigation snapshots; every method applies one pure operation from
// the schedule or calendar package and keeps the result.
type Session struct {
	ID string

	mu        sync.Mutex
	week      schedule.WeekSchedule
	overrides schedule.DailyOverrides
	nav       calendar.Navigation
	lastSeen  time.Time
	now       func() time.Time

	Blackouts *blackout.Manager
}

// Day is one entry of the navigated week window.
type Day struct {
	Date       string               `json:"date"`
	Weekday    string               `json:"weekday"`
	Label      string               `json:"label"`
	Schedule   schedule.DaySchedule `json:"schedule"`
	Overridden bool                 `json:"overridden"`
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID        string                  `json:"id"`
	Current   string                  `json:"current"`
	WeekStart string                  `json:"weekStart"`
	Week      schedule.WeekSchedule   `json:"week"`
	Overrides schedule.DailyOverrides `json:"overrides"`
	Days      []Day                   `json:"days"`
}

func newSession(id string, week schedule.WeekSchedule, nav calendar.Navigation, store blackout.Store, now func() time.Time) *Session {
	return &Session{
		ID:        id,
		week:      week,
		overrides: schedule.ClearAllOverrides(),
		nav:       nav,
		lastSeen:  now(),
		now:       now,
		Blackouts: blackout.NewManager(store),
	}
}

// update runs fn under the lock and marks the session as used.
func (s *Session) update(fn func()) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.lastSeen = s.now()
	return s.snapshotLocked()
}

func (s *Session) Snapshot() Snapshot {
	return s.update(func() {})
}

func (s *Session) Week() schedule.WeekSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.week
}

func (s *Session) Overrides() schedule.DailyOverrides {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overrides
}

func (s *Session) Navigation() calendar.Navigation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) SetDay(day schedule.Weekday, ds schedule.DaySchedule) Snapshot {
	return s.update(func() { s.week = schedule.SetDay(s.week, day, ds) })
}

func (s *Session) AddTimeRange(day schedule.Weekday) Snapshot {
	return s.update(func() { s.week = schedule.AddTimeRange(s.week, day) })
}

func (s *Session) RemoveTimeRange(day schedule.Weekday, index int) Snapshot {
	return s.update(func() { s.week = schedule.RemoveTimeRange(s.week, day, index) })
}

func (s *Session) UpdateTimeRange(day schedule.Weekday, index int, field schedule.RangeField, value string) Snapshot {
	return s.update(func() { s.week = schedule.UpdateTimeRange(s.week, day, index, field, value) })
}

func (s *Session) ClearAll() Snapshot {
	return s.update(func() { s.week = schedule.ClearAll(s.week) })
}

func (s *Session) CopyDayToWeek(source schedule.Weekday) Snapshot {
	return s.update(func() { s.week = schedule.CopyDayToWeek(s.week, source) })
}

func (s *Session) ApplyPreset(p schedule.PresetSchedule) Snapshot {
	return s.update(func() { s.week = schedule.ApplyPreset(p) })
}

func (s *Session) SetOverride(date time.Time, ds schedule.DaySchedule) Snapshot {
	return s.update(func() { s.overrides = schedule.SetOverride(s.overrides, date, ds) })
}

func (s *Session) ClearOverride(date time.Time) Snapshot {
	return s.update(func() { s.overrides = schedule.ClearOverride(s.overrides, date) })
}

func (s *Session) ClearAllOverrides() Snapshot {
	return s.update(func() { s.overrides = schedule.ClearAllOverrides() })
}

func (s *Session) PreviousWeek() Snapshot {
	return s.update(func() { s.nav = s.nav.PreviousWeek() })
}

func (s *Session) NextWeek() Snapshot {
	return s.update(func() { s.nav = s.nav.NextWeek() })
}

func (s *Session) Today() Snapshot {
	return s.update(func() { s.nav = s.nav.Today(s.now()) })
}

// EffectiveDay resolves a single date against the current snapshots.
func (s *Session) EffectiveDay(date time.Time) (schedule.DaySchedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schedule.Resolve(date, s.week, s.overrides)
}

// AddBlackout and RemoveBlackout go through the Manager and therefore never
// fail on store errors; the list is re-read afterwards.
func (s *Session) AddBlackout(ctx context.Context, p blackout.NewPeriod) ([]model.Blackout, error) {
	s.touch()
	if _, _, err := s.Blackouts.Add(ctx, p); err != nil {
		return nil, err
	}
	return s.Blackouts.List(ctx), nil
}

func (s *Session) RemoveBlackout(ctx context.Context, id string) []model.Blackout {
	s.touch()
	s.Blackouts.Remove(ctx, id)
	return s.Blackouts.List(ctx)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

func (s *Session) snapshotLocked() Snapshot {
	dates := s.nav.WeekDays()
	days := make([]Day, 0, len(dates))
	for _, date := range dates {
		ds, overridden := schedule.Resolve(date, s.week, s.overrides)
		wd := schedule.WeekdayOf(date)
		days = append(days, Day{
			Date:       schedule.DateKey(date),
			Weekday:    wd.String(),
			Label:      wd.Label(),
			Schedule:   ds,
			Overridden: overridden,
		})
	}

	overrides := make(schedule.DailyOverrides, len(s.overrides))
	for k, v := range s.overrides {
		overrides[k] = v
	}

	return Snapshot{
		ID:        s.ID,
		Current:   schedule.DateKey(s.nav.Current),
		WeekStart: s.nav.WeekStart.String(),
		Week:      s.week,
		Overrides: overrides,
		Days:      days,
	}
}
