package blackout

import (
	"context"
	"errors"
	"strings"

	appLog "availcal/internal/log"
	"availcal/internal/model"
)

// ErrIncomplete is returned by Manager.Add when a timestamp is missing. The
// store is not called in that case.
var ErrIncomplete = errors.New("blackout: start and end are required")

// NewPeriod is the input for creating a blackout.
type NewPeriod struct {
	StartAt string `json:"startAt"`
	EndAt   string `json:"endAt"`
	Reason  string `json:"reason,omitempty"`
}

// Store is the persistence collaborator supplied by the owner of the
// editing session. All calls may block and fail.
type Store interface {
	Add(ctx context.Context, p NewPeriod) (model.Blackout, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Blackout, error)
}

// Manager fronts a Store. Store failures are logged, handed to OnError and
// never returned, so a failing store cannot break the session.
type Manager struct {
	store Store

	// OnError, if set, receives every swallowed store failure.
	OnError func(op string, err error)
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Add validates p and forwards it to the store. It returns ErrIncomplete
// for a missing timestamp; store failures yield (zero, false, nil).
func (m *Manager) Add(ctx context.Context, p NewPeriod) (model.Blackout, bool, error) {
	if strings.TrimSpace(p.StartAt) == "" || strings.TrimSpace(p.EndAt) == "" {
		return model.Blackout{}, false, ErrIncomplete
	}

	b, err := m.store.Add(ctx, p)
	if err != nil {
		m.fail("add", err, "start_at", p.StartAt, "end_at", p.EndAt)
		return model.Blackout{}, false, nil
	}
	appLog.Debug("blackout added", "id", b.ID, "start_at", b.StartAt, "end_at", b.EndAt)
	return b, true, nil
}

// Remove deletes by id and reports whether the store succeeded.
func (m *Manager) Remove(ctx context.Context, id string) bool {
	if err := m.store.Remove(ctx, id); err != nil {
		m.fail("remove", err, "id", id)
		return false
	}
	appLog.Debug("blackout removed", "id", id)
	return true
}

// List returns the store's current list, or an empty list on failure.
func (m *Manager) List(ctx context.Context) []model.Blackout {
	list, err := m.store.List(ctx)
	if err != nil {
		m.fail("list", err)
		return []model.Blackout{}
	}
	if list == nil {
		list = []model.Blackout{}
	}
	return list
}

func (m *Manager) fail(op string, err error, kv ...any) {
	appLog.Error("blackout "+op+" failed", err, kv...)
	if m.OnError != nil {
		m.OnError(op, err)
	}
}
