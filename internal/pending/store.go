package pending

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/habitd/internal/model"
)

// Store mirrors the pending-change map into a single namespaced JSON blob so
// an unplanned reload can recover unconfirmed edits. The format is internal
// and opaque to every other collaborator.
type Store struct {
	path string
}

type storeBlob struct {
	Changes []model.PendingLocalChange `json:"pending_changes"`
}

func NewStore(path string) *Store {
	return &Store{path: strings.TrimSpace(path)}
}

// Load reads the blob once. A missing or empty file is not an error.
func (s *Store) Load() ([]model.PendingLocalChange, error) {
	if s == nil || s.path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("pending: read store: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}
	var blob storeBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, fmt.Errorf("pending: decode store: %w", err)
	}
	return blob.Changes, nil
}

// Save writes the blob atomically via a temp file rename.
func (s *Store) Save(changes []model.PendingLocalChange) error {
	if s == nil || s.path == "" {
		return nil
	}
	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pending: create store dir: %w", err)
		}
	}
	payload, err := json.MarshalIndent(storeBlob{Changes: changes}, "", "  ")
	if err != nil {
		return fmt.Errorf("pending: encode store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("pending: write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("pending: replace store: %w", err)
	}
	return nil
}
