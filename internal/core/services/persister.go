package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portsrepo "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/repositories"
)

// ErrPersisterClosed is returned by Flush when snapshots are still unsaved but the writer has stopped.
var ErrPersisterClosed = errors.New("persister closed")

// StateScheduler accepts state snapshots for saving.
type StateScheduler interface {
	Schedule(state domain.PersistedState)
}

// Persister writes state snapshots in the background. Only the newest pending snapshot is
// written; older ones scheduled while a write is in flight are dropped.
type Persister struct {
	repo     portsrepo.StateWriter
	debounce time.Duration
	logger   *slog.Logger
	timeout  time.Duration

	mu      sync.Mutex
	pending *domain.PersistedState
	seq     uint64
	saved   uint64
	lastErr error
	changed chan struct{}

	kick      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithDebounce delays each write so bursts of changes collapse into one save.
func WithDebounce(d time.Duration) PersisterOption {
	return func(p *Persister) {
		p.debounce = d
	}
}

// WithPersisterLogger sets the logger used for failed writes.
func WithPersisterLogger(logger *slog.Logger) PersisterOption {
	return func(p *Persister) {
		p.logger = logger
	}
}

// WithSaveTimeout bounds each individual write.
func WithSaveTimeout(d time.Duration) PersisterOption {
	return func(p *Persister) {
		p.timeout = d
	}
}

// NewPersister starts the background writer. Call Close to flush and stop it.
func NewPersister(repo portsrepo.StateWriter, opts ...PersisterOption) *Persister {
	p := &Persister{
		repo:    repo,
		logger:  slog.Default(),
		timeout: 30 * time.Second,
		changed: make(chan struct{}),
		kick:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Schedule queues state for saving and returns immediately.
func (p *Persister) Schedule(state domain.PersistedState) {
	p.mu.Lock()
	p.pending = &state
	p.seq++
	p.mu.Unlock()

	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Flush waits until everything scheduled before the call has been written and returns the
// error of the last write, if it failed. After Close it no longer waits.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	target := p.seq
	p.mu.Unlock()

	for {
		p.mu.Lock()
		if p.saved >= target {
			err := p.lastErr
			p.mu.Unlock()
			return err
		}
		changed := p.changed
		p.mu.Unlock()

		select {
		case <-p.done:
			return ErrPersisterClosed
		default:
		}

		select {
		case p.kick <- struct{}{}:
		default:
		}

		select {
		case <-changed:
		case <-p.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close writes any pending snapshot and stops the background writer.
func (p *Persister) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.kick:
			if p.debounce > 0 {
				select {
				case <-time.After(p.debounce):
				case <-p.quit:
				}
			}
			p.saveLatest()
		case <-p.quit:
			p.saveLatest()
			return
		}
	}
}

func (p *Persister) saveLatest() {
	p.mu.Lock()
	state, target := p.pending, p.seq
	p.pending = nil
	p.mu.Unlock()

	if state == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	err := p.repo.SaveState(ctx, *state)
	cancel()
	if err != nil {
		p.logger.Error("Failed to persist application state", slog.String("error", err.Error()), slog.Uint64("seq", target))
	} else {
		p.logger.Debug("Application state persisted", slog.Uint64("seq", target))
	}

	p.mu.Lock()
	p.lastErr = err
	if target > p.saved {
		p.saved = target
	}
	close(p.changed)
	p.changed = make(chan struct{})
	p.mu.Unlock()
}
