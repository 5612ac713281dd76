package clients

import (
	"context"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CEXBalanceFetcher reads the holdings of one exchange account through the balance proxy.
type CEXBalanceFetcher interface {
	FetchCEXBalances(ctx context.Context, cfg domain.CexConfig) (*domain.SourceBalance, error)
}

// ChainBalanceFetcher reads the holdings of one wallet through the balance proxy.
type ChainBalanceFetcher interface {
	FetchChainBalances(ctx context.Context, wallet domain.Wallet) (*domain.SourceBalance, error)
}

// BalanceProxyFacade is the full balance proxy contract.
type BalanceProxyFacade interface {
	CEXBalanceFetcher
	ChainBalanceFetcher
}

// PriceOracle maps symbols to USD prices. Symbols it cannot price are left out of the result.
type PriceOracle interface {
	FetchUSDPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// ClientProvider holds the outbound clients needed by services.
type ClientProvider struct {
	BalanceProxy BalanceProxyFacade
	PriceOracle  PriceOracle
}
