package blackout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"availcal/internal/model"
)

type failingStore struct {
	calls int
	err   error
}

func (f *failingStore) Add(context.Context, NewPeriod) (model.Blackout, error) {
	f.calls++
	return model.Blackout{}, f.err
}

func (f *failingStore) Remove(context.Context, string) error {
	f.calls++
	return f.err
}

func (f *failingStore) List(context.Context) ([]model.Blackout, error) {
	f.calls++
	return nil, f.err
}

func TestManagerAddRejectsMissingTimestamps(t *testing.T) {
	store := &failingStore{}
	m := NewManager(store)

	for _, p := range []NewPeriod{
		{EndAt: "2025-06-02T17:00:00Z"},
		{StartAt: "2025-06-02T09:00:00Z", EndAt: "  "},
		{},
	} {
		_, ok, err := m.Add(context.Background(), p)
		assert.ErrorIs(t, err, ErrIncomplete)
		assert.False(t, ok)
	}
	assert.Zero(t, store.calls, "store must not be called")
}

func TestManagerSwallowsStoreFailures(t *testing.T) {
	store := &failingStore{err: errors.New("db down")}
	m := NewManager(store)

	var ops []string
	m.OnError = func(op string, err error) {
		ops = append(ops, op)
		assert.EqualError(t, err, "db down")
	}

	_, ok, err := m.Add(context.Background(), NewPeriod{StartAt: "a", EndAt: "b"})
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, m.Remove(context.Background(), "x"))
	assert.Empty(t, m.List(context.Background()))
	assert.NotNil(t, m.List(context.Background()))

	assert.Equal(t, []string{"add", "remove", "list", "list"}, ops)
}

func TestManagerWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore())

	b, ok, err := m.Add(ctx, NewPeriod{StartAt: "2025-06-03T00:00:00Z", EndAt: "2025-06-04T00:00:00Z", Reason: "Dentist"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Dentist", b.Reason)

	_, _, err = m.Add(ctx, NewPeriod{StartAt: "2025-06-01T00:00:00Z", EndAt: "2025-06-02T00:00:00Z"})
	require.NoError(t, err)

	list := m.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-06-01T00:00:00Z", list[0].StartAt)

	assert.True(t, m.Remove(ctx, b.ID))
	assert.False(t, m.Remove(ctx, b.ID), "second remove fails in the store")
	assert.Len(t, m.List(ctx), 1)
}

func TestMemoryStoreConcurrentAdds(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Add(context.Background(), NewPeriod{StartAt: "s", EndAt: "e"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestMemoryStoreHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Add(ctx, NewPeriod{StartAt: "s", EndAt: "e"})
	assert.ErrorIs(t, err, context.Canceled)
}
