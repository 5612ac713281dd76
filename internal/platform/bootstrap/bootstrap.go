package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/SscSPs/crypto_bookkeeper/internal/adapters/balanceproxy"
	"github.com/SscSPs/crypto_bookkeeper/internal/adapters/database/file"
	"github.com/SscSPs/crypto_bookkeeper/internal/adapters/database/pgsql"
	"github.com/SscSPs/crypto_bookkeeper/internal/adapters/database/sealed"
	"github.com/SscSPs/crypto_bookkeeper/internal/adapters/database/sqlite"
	"github.com/SscSPs/crypto_bookkeeper/internal/adapters/pricefeed"
	portsclients "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/clients"
	portsrepo "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/platform/config"
	"github.com/SscSPs/crypto_bookkeeper/internal/utils/sealer"
	"github.com/SscSPs/crypto_bookkeeper/pkg/database"
)

// App is a wired application: loaded state, its persister and the services over it.
type App struct {
	Config    *config.Config
	Services  *portssvc.ServiceContainer
	Session   *services.Session
	Persister *services.Persister
	Repos     portsrepo.RepositoryProvider

	logger *slog.Logger
}

// Open connects the configured storage, loads the state and builds the services.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	repos, err := OpenRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	session, persister, err := services.OpenSession(ctx, cfg, repos, logger)
	if err != nil {
		_ = repos.StateRepo.Close()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	return &App{
		Config:    cfg,
		Services:  services.NewServiceContainer(cfg, session, NewClients(cfg)),
		Session:   session,
		Persister: persister,
		Repos:     repos,
		logger:    logger,
	}, nil
}

// Close flushes pending state and releases the storage backend.
func (a *App) Close(ctx context.Context) error {
	flushErr := a.Persister.Close(ctx)
	if flushErr != nil {
		a.logger.Error("Failed to flush state on shutdown", slog.String("error", flushErr.Error()))
	}
	closeErr := a.Repos.StateRepo.Close()
	return errors.Join(flushErr, closeErr)
}

// OpenRepositories opens the storage backend named by STORAGE_DRIVER and, when a passphrase
// is set, wraps it so exchange secrets are sealed at rest.
func OpenRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	var repo portsrepo.StateRepositoryFacade

	switch cfg.StorageDriver {
	case config.StorageDriverFile:
		fr := file.NewStateRepository(cfg.StoragePath, cfg.StorageKey)
		if err := fr.Ping(ctx); err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("storage directory unusable: %w", err)
		}
		logger.Info("Using file storage", slog.String("path", fr.Path()))
		repo = fr

	case config.StorageDriverSQLite:
		path := filepath.Join(cfg.StoragePath, "bookkeeper.db")
		db, err := database.NewSQLiteDB(ctx, path)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		sr, err := sqlite.NewStateRepository(ctx, db, cfg.StorageKey)
		if err != nil {
			_ = db.Close()
			return portsrepo.RepositoryProvider{}, err
		}
		logger.Info("Using sqlite storage", slog.String("path", path))
		repo = sr

	case config.StorageDriverPostgres:
		if err := database.RunPostgresMigrations(cfg.DatabaseURL, pgsql.Migrations, pgsql.MigrationsDir, logger); err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")
		repo = pgsql.NewPgxStateRepository(pool, cfg.StorageKey)

	default:
		return portsrepo.RepositoryProvider{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.StatePassphrase != "" {
		s, err := sealer.New(cfg.StatePassphrase)
		if err != nil {
			_ = repo.Close()
			return portsrepo.RepositoryProvider{}, err
		}
		repo = sealed.NewStateRepository(repo, s)
	}

	return portsrepo.RepositoryProvider{StateRepo: repo}, nil
}

// NewClients builds the outbound clients from configuration.
func NewClients(cfg *config.Config) portsclients.ClientProvider {
	return portsclients.ClientProvider{
		BalanceProxy: balanceproxy.NewClient(cfg.BalanceProxyURL, balanceproxy.WithTimeout(cfg.HTTPTimeout)),
		PriceOracle:  pricefeed.NewCoinGecko(cfg.PriceAPIURL, pricefeed.WithTimeout(cfg.HTTPTimeout)),
	}
}
