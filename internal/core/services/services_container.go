package services

import (
	"context"
	"log/slog"

	portsclients "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/clients"
	portsrepo "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/platform/config"
)

// OpenSession loads the stored state and starts the background persister that saves it.
// Callers must Close the persister on shutdown.
func OpenSession(ctx context.Context, cfg *config.Config, repos portsrepo.RepositoryProvider, logger *slog.Logger) (*Session, *Persister, error) {
	persister := NewPersister(repos.StateRepo,
		WithDebounce(cfg.PersistDebounce),
		WithPersisterLogger(logger),
	)
	session, err := LoadSession(ctx, repos.StateRepo, persister)
	if err != nil {
		_ = persister.Close(ctx)
		return nil, nil, err
	}
	return session, persister, nil
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, session *Session, clients portsclients.ClientProvider) *portssvc.ServiceContainer {
	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	container.Transaction = NewTransactionService(session)
	container.Backup = NewBackupService(session, nil)
	container.Settings = NewSettingsService(session, nil)

	// Balance refresh prices assets through the cached price service
	container.Price = NewPriceService(clients.PriceOracle, cfg.PriceCacheTTL)
	container.Balance = NewBalanceService(session, clients.BalanceProxy, container.Price,
		WithRefreshConcurrency(cfg.RefreshConcurrency),
	)

	return container
}
