// Package file stores the application state as a JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portsrepo "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/repositories"
)

// StateRepository keeps the state in <dir>/<key>.json.
type StateRepository struct {
	dir  string
	path string
}

// NewStateRepository creates a repository rooted at dir.
func NewStateRepository(dir, key string) *StateRepository {
	return &StateRepository{dir: dir, path: filepath.Join(dir, key+".json")}
}

var _ portsrepo.StateRepositoryFacade = (*StateRepository)(nil)

// Path returns the file the state is written to.
func (r *StateRepository) Path() string {
	return r.path
}

func (r *StateRepository) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no saved state at %s", apperrors.ErrNotFound, r.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", r.path, err)
	}

	var state domain.PersistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state file %s: %w", r.path, err)
	}
	state.State.Normalize()
	return &state, nil
}

// SaveState writes to a temporary file and renames it over the old one, so a crash never
// leaves a half-written state behind.
func (r *StateRepository) SaveState(ctx context.Context, state domain.PersistedState) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", r.dir, err)
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace state file %s: %w", r.path, err)
	}
	return nil
}

// Ping checks that the state directory exists or can be created.
func (r *StateRepository) Ping(ctx context.Context) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("state directory %s is not usable: %w", r.dir, err)
	}
	return nil
}

func (r *StateRepository) Close() error {
	return nil
}
