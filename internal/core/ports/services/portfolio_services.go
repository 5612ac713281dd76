package services

import (
	"context"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/shopspring/decimal"
)

// BackupSvcFacade exports and imports backup files.
type BackupSvcFacade interface {
	ExportBackup(ctx context.Context) (*domain.Backup, error)

	// ImportBackup returns false, leaving the state untouched, when the file lacks a
	// version or a data section.
	ImportBackup(ctx context.Context, backup domain.Backup) (bool, error)
}

// BalanceSvcFacade refreshes and reports exchange and wallet holdings.
type BalanceSvcFacade interface {
	// RefreshAll fetches every enabled exchange account and wallet. Failures are reported per
	// source and never abort the other fetches.
	RefreshAll(ctx context.Context) (*domain.RefreshReport, error)

	// GetBalances returns the last successful snapshot of each source.
	GetBalances(ctx context.Context) (map[string]domain.SourceBalance, error)

	// GetSummary values all holdings, manual assets included.
	GetSummary(ctx context.Context) (*domain.PortfolioSummary, error)
}

// PriceSvcFacade looks up USD prices.
type PriceSvcFacade interface {
	GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// SettingsSvcFacade manages exchange accounts, wallets, manual assets and preferences.
type SettingsSvcFacade interface {
	ListCexConfigs(ctx context.Context) ([]domain.CexConfig, error)
	SaveCexConfig(ctx context.Context, req dto.SaveCexConfigRequest) (*domain.CexConfig, error)
	DeleteCexConfig(ctx context.Context, id string) error

	ListWallets(ctx context.Context) ([]domain.Wallet, error)
	SaveWallet(ctx context.Context, req dto.SaveWalletRequest) (*domain.Wallet, error)
	DeleteWallet(ctx context.Context, id string) error

	ListManualAssets(ctx context.Context) ([]domain.ManualAsset, error)
	SaveManualAsset(ctx context.Context, req dto.SaveManualAssetRequest) (*domain.ManualAsset, error)
	DeleteManualAsset(ctx context.Context, id string) error

	GetPreferences(ctx context.Context) (*dto.PreferencesResponse, error)
	UpdatePreferences(ctx context.Context, req dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error)
}
