package ledger

import (
	"context"
	"sync"
)

// Store is the record-store contract for the accounts collection. LoadAll
// returns records in storage order; SaveAll durably overwrites the whole
// collection. Callers serialize writes.
type Store interface {
	LoadAll(ctx context.Context) ([]Account, error)
	SaveAll(ctx context.Context, accounts []Account) error
}

type memoryStore struct {
	mu       sync.RWMutex
	accounts []Account
}

// NewMemoryStore constructs an in-memory store for tests.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) LoadAll(_ context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, len(s.accounts))
	for i, a := range s.accounts {
		out[i] = a.Clone()
	}
	return out, nil
}

func (s *memoryStore) SaveAll(_ context.Context, accounts []Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make([]Account, len(accounts))
	for i, a := range accounts {
		s.accounts[i] = a.Clone()
	}
	return nil
}
