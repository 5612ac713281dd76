package repositories

import (
	"context"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
)

// StateReader loads the persisted application state.
type StateReader interface {
	// LoadState returns the stored state, or an error wrapping apperrors.ErrNotFound when
	// nothing has been saved yet.
	LoadState(ctx context.Context) (*domain.PersistedState, error)
}

// StateWriter replaces the persisted application state.
type StateWriter interface {
	SaveState(ctx context.Context, state domain.PersistedState) error
}

// StateRepositoryFacade combines all state storage operations.
type StateRepositoryFacade interface {
	StateReader
	StateWriter
	HealthChecker
	Close() error
}
