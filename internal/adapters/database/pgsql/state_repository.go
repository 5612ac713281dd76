package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portsrepo "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxStateRepository keeps the state as a JSONB document in the app_state table.
type PgxStateRepository struct {
	pool *pgxpool.Pool
	key  string
}

// NewPgxStateRepository creates a new repository for the state stored under key.
func NewPgxStateRepository(pool *pgxpool.Pool, key string) *PgxStateRepository {
	return &PgxStateRepository{pool: pool, key: key}
}

var _ portsrepo.StateRepositoryFacade = (*PgxStateRepository)(nil)

// LoadState retrieves the stored state document.
func (r *PgxStateRepository) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	query := `
		SELECT payload, version
		FROM app_state
		WHERE storage_key = $1;
	`
	var payload []byte
	var version int
	err := r.pool.QueryRow(ctx, query, r.key).Scan(&payload, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Map db not found error to application specific error
			return nil, fmt.Errorf("%w: no saved state for %s", apperrors.ErrNotFound, r.key)
		}
		return nil, fmt.Errorf("failed to load state %s: %w", r.key, err)
	}

	var state domain.AppState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state %s: %w", r.key, err)
	}
	state.Normalize()
	return &domain.PersistedState{State: state, Version: version}, nil
}

// SaveState upserts the state document.
func (r *PgxStateRepository) SaveState(ctx context.Context, state domain.PersistedState) error {
	payload, err := json.Marshal(state.State)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	query := `
		INSERT INTO app_state (storage_key, payload, version, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (storage_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = r.pool.Exec(ctx, query, r.key, payload, state.Version, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save state %s: %w", r.key, err)
	}
	return nil
}

func (r *PgxStateRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PgxStateRepository) Close() error {
	r.pool.Close()
	return nil
}
