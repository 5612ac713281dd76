// Package sqlite stores the application state as a single row in an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portsrepo "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/repositories"
)

const createTableStatement = `
	CREATE TABLE IF NOT EXISTS app_state (
		storage_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		version INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`

// StateRepository keeps the state in the app_state table under one storage key.
type StateRepository struct {
	db  *sql.DB
	key string
}

// NewStateRepository creates the table if needed and returns a repository for key.
func NewStateRepository(ctx context.Context, db *sql.DB, key string) (*StateRepository, error) {
	if _, err := db.ExecContext(ctx, createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create app_state table: %w", err)
	}
	return &StateRepository{db: db, key: key}, nil
}

var _ portsrepo.StateRepositoryFacade = (*StateRepository)(nil)

func (r *StateRepository) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	query := `SELECT payload, version FROM app_state WHERE storage_key = ?;`

	var payload string
	var version int
	err := r.db.QueryRowContext(ctx, query, r.key).Scan(&payload, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no saved state for %s", apperrors.ErrNotFound, r.key)
		}
		return nil, fmt.Errorf("failed to load state %s: %w", r.key, err)
	}

	var state domain.AppState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("failed to decode state %s: %w", r.key, err)
	}
	state.Normalize()
	return &domain.PersistedState{State: state, Version: version}, nil
}

func (r *StateRepository) SaveState(ctx context.Context, state domain.PersistedState) error {
	payload, err := json.Marshal(state.State)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	query := `
		INSERT INTO app_state (storage_key, payload, version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (storage_key) DO UPDATE SET
			payload = excluded.payload,
			version = excluded.version,
			updated_at = excluded.updated_at;
	`
	if _, err := r.db.ExecContext(ctx, query, r.key, string(payload), state.Version, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save state %s: %w", r.key, err)
	}
	return nil
}

func (r *StateRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *StateRepository) Close() error {
	return r.db.Close()
}
