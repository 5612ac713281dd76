package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	portsclients "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/clients"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// DefaultPriceCacheTTL is used when the service is built with a non-positive ttl.
const DefaultPriceCacheTTL = 5 * time.Minute

type priceService struct {
	BaseService
	oracle     portsclients.PriceOracle
	priceCache *cache.Cache
}

// NewPriceService creates a price lookup that caches each symbol for ttl.
func NewPriceService(oracle portsclients.PriceOracle, ttl time.Duration) portssvc.PriceSvcFacade {
	if ttl <= 0 {
		ttl = DefaultPriceCacheTTL
	}
	return &priceService{
		oracle:     oracle,
		priceCache: cache.New(ttl, 2*ttl),
	}
}

var _ portssvc.PriceSvcFacade = (*priceService)(nil)

func (s *priceService) GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(symbols))
	var missing []string
	seen := map[string]bool{}
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		if cached, found := s.priceCache.Get(sym); found {
			prices[sym] = cached.(decimal.Decimal)
			continue
		}
		missing = append(missing, sym)
	}
	if len(missing) == 0 {
		return prices, nil
	}

	sort.Strings(missing)
	fetched, err := s.oracle.FetchUSDPrices(ctx, missing)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch prices", slog.Any("symbols", missing))
		return nil, fmt.Errorf("%w: price lookup failed: %w", apperrors.ErrUpstream, err)
	}
	for sym, price := range fetched {
		sym = strings.ToUpper(sym)
		s.priceCache.Set(sym, price, cache.DefaultExpiration)
		prices[sym] = price
	}
	s.LogDebug(ctx, "Prices fetched", slog.Int("requested", len(missing)), slog.Int("priced", len(fetched)))
	return prices, nil
}
