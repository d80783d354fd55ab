package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/delux-wallet/delux_ledger/internal/storage"
)

// JSONStore persists the accounts collection as a single JSON array file, the
// layout the service historically used.
type JSONStore struct {
	path string
}

// NewJSONStore builds a file-backed store rooted at dir.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &JSONStore{path: filepath.Join(dir, "accounts.json")}, nil
}

// LoadAll reads every account record in storage order.
func (s *JSONStore) LoadAll(_ context.Context) ([]Account, error) {
	return storage.LoadCollection[Account](s.path)
}

// SaveAll atomically overwrites the collection.
func (s *JSONStore) SaveAll(_ context.Context, accounts []Account) error {
	return storage.SaveCollection(s.path, accounts)
}
