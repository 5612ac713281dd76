package services_test

import (
	"context"
	"sync"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock StateRepository ---
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PersistedState), args.Error(1)
}

func (m *MockStateRepository) SaveState(ctx context.Context, state domain.PersistedState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStateRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Mock BalanceProxy ---
type MockBalanceProxy struct {
	mock.Mock
}

func (m *MockBalanceProxy) FetchCEXBalances(ctx context.Context, cfg domain.CexConfig) (*domain.SourceBalance, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SourceBalance), args.Error(1)
}

func (m *MockBalanceProxy) FetchChainBalances(ctx context.Context, wallet domain.Wallet) (*domain.SourceBalance, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SourceBalance), args.Error(1)
}

// --- Mock PriceOracle ---
type MockPriceOracle struct {
	mock.Mock
}

func (m *MockPriceOracle) FetchUSDPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// --- Mock PriceSvc ---
type MockPriceSvc struct {
	mock.Mock
}

func (m *MockPriceSvc) GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// recordingScheduler keeps every snapshot a session hands over.
type recordingScheduler struct {
	mu        sync.Mutex
	snapshots []domain.PersistedState
}

func (r *recordingScheduler) Schedule(state domain.PersistedState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, state)
}

func (r *recordingScheduler) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *recordingScheduler) last() domain.PersistedState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots[len(r.snapshots)-1]
}
