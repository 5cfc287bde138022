package blackout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"availcal/internal/model"
)

var ErrNotFound = errors.New("blackout not found")

// MemoryStore keeps blackouts in process memory. Concurrent calls are
// independent; no ordering between them is promised.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]model.Blackout
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]model.Blackout)}
}

func (s *MemoryStore) Add(ctx context.Context, p NewPeriod) (model.Blackout, error) {
	if err := ctx.Err(); err != nil {
		return model.Blackout{}, err
	}
	b := model.Blackout{
		ID:      uuid.NewString(),
		StartAt: p.StartAt,
		EndAt:   p.EndAt,
		Reason:  p.Reason,
	}

	s.mu.Lock()
	s.items[b.ID] = b
	s.mu.Unlock()

	return b, nil
}

func (s *MemoryStore) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.items, id)
	return nil
}

// List orders by StartAt, then ID.
func (s *MemoryStore) List(ctx context.Context) ([]model.Blackout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]model.Blackout, 0, len(s.items))
	for _, b := range s.items {
		out = append(out, b)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartAt != out[j].StartAt {
			return out[i].StartAt < out[j].StartAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
