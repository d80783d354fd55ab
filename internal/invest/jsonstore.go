package invest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/delux-wallet/delux_ledger/internal/storage"
)

// JSONStore persists the investments collection as a single JSON array file.
type JSONStore struct {
	path string
}

// NewJSONStore builds a file-backed store rooted at dir.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &JSONStore{path: filepath.Join(dir, "investments.json")}, nil
}

// LoadAll reads every investment record in creation order.
func (s *JSONStore) LoadAll(_ context.Context) ([]Investment, error) {
	return storage.LoadCollection[Investment](s.path)
}

// SaveAll atomically overwrites the collection.
func (s *JSONStore) SaveAll(_ context.Context, investments []Investment) error {
	return storage.SaveCollection(s.path, investments)
}
