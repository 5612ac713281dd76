package handlers_test

import (
	"context"
	"io"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockTransactionService) ListDeleted(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListPairs(ctx context.Context, filter domain.PairFilter) ([]domain.Pair, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Pair), args.Error(1)
}

func (m *MockTransactionService) GetStatistics(ctx context.Context) (domain.Statistics, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Statistics), args.Error(1)
}

func (m *MockTransactionService) AggregateFills(ctx context.Context, fills []domain.Fill) domain.FillSummary {
	args := m.Called(ctx, fills)
	return args.Get(0).(domain.FillSummary)
}

func (m *MockTransactionService) CreateTrade(ctx context.Context, req dto.CreateTradeRequest) ([]domain.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) ReplaceTrade(ctx context.Context, id string, req dto.CreateTradeRequest) ([]domain.Transaction, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, id string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTransactionService) Restore(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTransactionService) HardDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTransactionService) BulkSoftDelete(ctx context.Context, ids []string) domain.BulkResult {
	return m.Called(ctx, ids).Get(0).(domain.BulkResult)
}

func (m *MockTransactionService) BulkRestore(ctx context.Context, ids []string) domain.BulkResult {
	return m.Called(ctx, ids).Get(0).(domain.BulkResult)
}

func (m *MockTransactionService) BulkHardDelete(ctx context.Context, ids []string) domain.BulkResult {
	return m.Called(ctx, ids).Get(0).(domain.BulkResult)
}

func (m *MockTransactionService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, string(body))
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionService) ExportCSV(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(string); ok {
		_, _ = io.WriteString(w, s)
	}
	return args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock BackupService ---
type MockBackupService struct {
	mock.Mock
}

func (m *MockBackupService) ExportBackup(ctx context.Context) (*domain.Backup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Backup), args.Error(1)
}

func (m *MockBackupService) ImportBackup(ctx context.Context, backup domain.Backup) (bool, error) {
	args := m.Called(ctx, backup)
	return args.Bool(0), args.Error(1)
}

var _ portssvc.BackupSvcFacade = (*MockBackupService)(nil)

// --- Mock BalanceService ---
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) RefreshAll(ctx context.Context) (*domain.RefreshReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshReport), args.Error(1)
}

func (m *MockBalanceService) GetBalances(ctx context.Context) (map[string]domain.SourceBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.SourceBalance), args.Error(1)
}

func (m *MockBalanceService) GetSummary(ctx context.Context) (*domain.PortfolioSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioSummary), args.Error(1)
}

var _ portssvc.BalanceSvcFacade = (*MockBalanceService)(nil)

// --- Mock PriceService ---
type MockPriceService struct {
	mock.Mock
}

func (m *MockPriceService) GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

var _ portssvc.PriceSvcFacade = (*MockPriceService)(nil)

// --- Mock SettingsService ---
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) ListCexConfigs(ctx context.Context) ([]domain.CexConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CexConfig), args.Error(1)
}

func (m *MockSettingsService) SaveCexConfig(ctx context.Context, req dto.SaveCexConfigRequest) (*domain.CexConfig, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CexConfig), args.Error(1)
}

func (m *MockSettingsService) DeleteCexConfig(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSettingsService) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockSettingsService) SaveWallet(ctx context.Context, req dto.SaveWalletRequest) (*domain.Wallet, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockSettingsService) DeleteWallet(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSettingsService) ListManualAssets(ctx context.Context) ([]domain.ManualAsset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ManualAsset), args.Error(1)
}

func (m *MockSettingsService) SaveManualAsset(ctx context.Context, req dto.SaveManualAssetRequest) (*domain.ManualAsset, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ManualAsset), args.Error(1)
}

func (m *MockSettingsService) DeleteManualAsset(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSettingsService) GetPreferences(ctx context.Context) (*dto.PreferencesResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PreferencesResponse), args.Error(1)
}

func (m *MockSettingsService) UpdatePreferences(ctx context.Context, req dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PreferencesResponse), args.Error(1)
}

var _ portssvc.SettingsSvcFacade = (*MockSettingsService)(nil)
