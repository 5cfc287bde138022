package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"availcal/internal/blackout"
	"availcal/internal/calendar"
	appLog "availcal/internal/log"
	"availcal/internal/schedule"
)

var ErrNotFound = errors.New("session not found")

// Options configures a Registry.
type Options struct {
	// Location is where "today" and date keys are evaluated. Nil means UTC.
	Location *time.Location
	// WeekStart is the first day of navigated weeks.
	WeekStart time.Weekday
	// IdleTTL evicts sessions untouched for longer. Zero disables eviction.
	IdleTTL time.Duration
	// NewStore supplies the blackout collaborator of each new session.
	// Nil means an in-memory store.
	NewStore func() blackout.Store
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Registry holds the live editing sessions of a process.
type Registry struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session

	cron *cron.Cron
}

func NewRegistry(opts Options) *Registry {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.NewStore == nil {
		opts.NewStore = func() blackout.Store { return blackout.NewMemoryStore() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session seeded with week and navigated to today.
func (r *Registry) Create(week schedule.WeekSchedule) *Session {
	loc := r.opts.Location
	now := func() time.Time { return r.opts.Now().In(loc) }

	nav := calendar.NewNavigation(now(), r.opts.WeekStart)
	s := newSession(uuid.NewString(), week, nav, r.opts.NewStore(), now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	count := len(r.sessions)
	r.mu.Unlock()

	appLog.Info("session created", "id", s.ID, "sessions", count)
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.sessions, id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than IdleTTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.opts.Now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		appLog.Info("idle sessions swept", "removed", removed, "remaining", len(r.sessions))
	}
	return removed
}

// StartSweeper runs Sweep on the given cron spec until StopSweeper.
func (r *Registry) StartSweeper(spec string) error {
	c := cron.New(cron.WithLocation(r.opts.Location))
	if _, err := c.AddFunc(spec, func() { r.Sweep() }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	r.cron = c
	c.Start()
	appLog.Info("session sweeper started", "schedule", spec, "idle_ttl", r.opts.IdleTTL.String())
	return nil
}

// StopSweeper stops the sweeper and waits for a running sweep to finish.
func (r *Registry) StopSweeper() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.cron = nil
}
