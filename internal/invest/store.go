package invest

import (
	"context"
	"errors"
	"sync"
)

// ErrInvalidDuration indicates a term shorter than one day.
var ErrInvalidDuration = errors.New("duration must be at least one day")

// Store is the record-store contract for the investments collection. LoadAll
// returns records in creation order; SaveAll durably overwrites the whole
// collection. Callers serialize writes.
type Store interface {
	LoadAll(ctx context.Context) ([]Investment, error)
	SaveAll(ctx context.Context, investments []Investment) error
}

type memoryStore struct {
	mu          sync.RWMutex
	investments []Investment
}

// NewMemoryStore constructs an in-memory store for tests.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) LoadAll(_ context.Context) ([]Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Investment, len(s.investments))
	copy(out, s.investments)
	return out, nil
}

func (s *memoryStore) SaveAll(_ context.Context, investments []Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investments = make([]Investment, len(investments))
	copy(s.investments, investments)
	return nil
}
