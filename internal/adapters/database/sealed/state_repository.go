// Package sealed wraps a state repository so exchange and assistant credentials never reach
// storage in plain text.
package sealed

import (
	"context"
	"fmt"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portsrepo "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/repositories"
	"github.com/SscSPs/crypto_bookkeeper/internal/utils/sealer"
)

// StateRepository seals credentials on save and opens them on load.
type StateRepository struct {
	portsrepo.StateRepositoryFacade
	sealer *sealer.Sealer
}

// NewStateRepository wraps inner.
func NewStateRepository(inner portsrepo.StateRepositoryFacade, s *sealer.Sealer) *StateRepository {
	return &StateRepository{StateRepositoryFacade: inner, sealer: s}
}

var _ portsrepo.StateRepositoryFacade = (*StateRepository)(nil)

func (r *StateRepository) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	state, err := r.StateRepositoryFacade.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.transform(&state.State, r.sealer.Open); err != nil {
		return nil, fmt.Errorf("failed to open stored credentials: %w", err)
	}
	return state, nil
}

func (r *StateRepository) SaveState(ctx context.Context, state domain.PersistedState) error {
	state.State = state.State.Clone()
	if err := r.transform(&state.State, r.sealer.Seal); err != nil {
		return fmt.Errorf("failed to seal credentials: %w", err)
	}
	return r.StateRepositoryFacade.SaveState(ctx, state)
}

func (r *StateRepository) transform(state *domain.AppState, fn func(string) (string, error)) error {
	var err error
	for i := range state.CexConfigs {
		c := &state.CexConfigs[i]
		if c.APISecret, err = fn(c.APISecret); err != nil {
			return fmt.Errorf("exchange account %s: %w", c.ID, err)
		}
		if c.Password, err = fn(c.Password); err != nil {
			return fmt.Errorf("exchange account %s: %w", c.ID, err)
		}
	}
	if state.AIConfig.APIKey, err = fn(state.AIConfig.APIKey); err != nil {
		return fmt.Errorf("assistant config: %w", err)
	}
	return nil
}
