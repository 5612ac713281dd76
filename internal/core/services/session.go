package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portsrepo "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/repositories"
)

// errNoChange lets a Mutate callback report success without scheduling a save.
var errNoChange = errors.New("no change")

// Session owns the in-memory application state. All services read and change state through
// it; every successful change hands a snapshot to the scheduler.
type Session struct {
	mu        sync.RWMutex
	state     domain.AppState
	book      *domain.TransactionBook
	scheduler StateScheduler
}

// NewSession wraps an already loaded state.
func NewSession(state domain.AppState, scheduler StateScheduler) *Session {
	state.Normalize()
	return &Session{
		state:     state,
		book:      domain.NewTransactionBook(state.Transactions),
		scheduler: scheduler,
	}
}

// LoadSession reads the stored state, starting empty when nothing was saved yet.
func LoadSession(ctx context.Context, repo portsrepo.StateReader, scheduler StateScheduler) (*Session, error) {
	persisted, err := repo.LoadState(ctx)
	if errors.Is(err, apperrors.ErrNotFound) {
		return NewSession(domain.NewAppState(), scheduler), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load application state: %w", err)
	}
	return NewSession(persisted.State, scheduler), nil
}

// View runs fn under a read lock. fn must not change or retain state or book.
func (s *Session) View(fn func(state *domain.AppState, book *domain.TransactionBook) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state, s.book)
}

// Mutate runs fn under the write lock. When fn succeeds the new state is scheduled for saving.
// fn must leave state unchanged when it returns an error.
func (s *Session) Mutate(fn func(state *domain.AppState, book *domain.TransactionBook) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(&s.state, s.book); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	if s.scheduler != nil {
		s.scheduler.Schedule(s.snapshotLocked())
	}
	return nil
}

// Snapshot returns a deep copy of the current state in its persisted envelope.
func (s *Session) Snapshot() domain.PersistedState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Rebuild runs fn on a copy of the whole state under the write lock and installs the result,
// rebuilding the book from its transactions. It serves changes that swap the transaction set
// wholesale, as a backup import does. State is left untouched when fn returns an error.
func (s *Session) Rebuild(fn func(state *domain.AppState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.snapshotLocked().State
	if err := fn(&state); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	state.Normalize()
	s.state = state
	s.book = domain.NewTransactionBook(state.Transactions)
	if s.scheduler != nil {
		s.scheduler.Schedule(s.snapshotLocked())
	}
	return nil
}

func (s *Session) snapshotLocked() domain.PersistedState {
	state := s.state
	state.Transactions = s.book.All()
	return domain.PersistedState{State: state.Clone(), Version: domain.StateVersion}
}
