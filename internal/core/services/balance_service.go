package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portsclients "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/clients"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultRefreshConcurrency = 4

type balanceService struct {
	BaseService
	session     *Session
	proxy       portsclients.BalanceProxyFacade
	prices      portssvc.PriceSvcFacade
	concurrency int

	// keyed by source; serializes refreshes of the same account
	sourceLocks sync.Map
}

// BalanceServiceOption configures the balance service.
type BalanceServiceOption func(*balanceService)

// WithRefreshConcurrency caps how many sources are fetched at the same time.
func WithRefreshConcurrency(n int) BalanceServiceOption {
	return func(s *balanceService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithBalanceClock replaces the wall clock stamped on snapshots.
func WithBalanceClock(now func() time.Time) BalanceServiceOption {
	return func(s *balanceService) {
		s.now = now
	}
}

// NewBalanceService creates the balance refresh service. prices may be nil, in which case
// balances keep whatever price the proxy reported.
func NewBalanceService(session *Session, proxy portsclients.BalanceProxyFacade, prices portssvc.PriceSvcFacade, opts ...BalanceServiceOption) portssvc.BalanceSvcFacade {
	s := &balanceService{
		session:     session,
		proxy:       proxy,
		prices:      prices,
		concurrency: defaultRefreshConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

type refreshTask struct {
	key   string
	label string
	fetch func(ctx context.Context) (*domain.SourceBalance, error)
}

func (s *balanceService) RefreshAll(ctx context.Context) (*domain.RefreshReport, error) {
	var tasks []refreshTask
	_ = s.session.View(func(state *domain.AppState, _ *domain.TransactionBook) error {
		for _, cfg := range state.CexConfigs {
			if cfg.Disabled {
				continue
			}
			cfg := cfg
			tasks = append(tasks, refreshTask{
				key:   domain.SourceKey(domain.SourceCEX, cfg.ID),
				label: labelOr(cfg.Name, cfg.PlatformID),
				fetch: func(ctx context.Context) (*domain.SourceBalance, error) {
					return s.proxy.FetchCEXBalances(ctx, cfg)
				},
			})
		}
		for _, w := range state.Wallets {
			w := w
			tasks = append(tasks, refreshTask{
				key:   domain.SourceKey(domain.SourceChain, w.ID),
				label: labelOr(w.Name, w.Address),
				fetch: func(ctx context.Context) (*domain.SourceBalance, error) {
					return s.proxy.FetchChainBalances(ctx, w)
				},
			})
		}
		return nil
	})

	report := &domain.RefreshReport{
		Succeeded: []string{},
		Failed:    []domain.SourceFailure{},
		StartedAt: s.Now(),
	}
	var reportMu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			err := s.refreshOne(ctx, task)
			reportMu.Lock()
			defer reportMu.Unlock()
			if err != nil {
				s.LogError(ctx, err, "Balance refresh failed", slog.String("source", task.key))
				report.Failed = append(report.Failed, domain.SourceFailure{Source: task.key, Error: err.Error()})
				return nil
			}
			report.Succeeded = append(report.Succeeded, task.key)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Succeeded)
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Source < report.Failed[j].Source })
	report.Duration = s.Now().Sub(report.StartedAt)

	s.LogInfo(ctx, "Balance refresh finished",
		slog.Int("sources", len(tasks)),
		slog.Int("succeeded", len(report.Succeeded)),
		slog.Int("failed", len(report.Failed)))
	return report, nil
}

func (s *balanceService) refreshOne(ctx context.Context, task refreshTask) error {
	lock := s.sourceLock(task.key)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot, err := task.fetch(ctx)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("empty response for %s", task.key)
	}
	snapshot.Source = task.key
	if snapshot.Label == "" {
		snapshot.Label = task.label
	}
	snapshot.FetchedAt = s.Now()
	s.priceSnapshot(ctx, snapshot)

	return s.session.Mutate(func(state *domain.AppState, _ *domain.TransactionBook) error {
		balances := make(map[string]domain.SourceBalance, len(state.Balances)+1)
		for k, v := range state.Balances {
			balances[k] = v
		}
		balances[task.key] = *snapshot
		state.Balances = balances
		return nil
	})
}

func (s *balanceService) sourceLock(key string) *sync.Mutex {
	lock, _ := s.sourceLocks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// priceSnapshot fills in prices the proxy did not report and recomputes values from them.
// An asset with no known price keeps whatever value the proxy reported.
func (s *balanceService) priceSnapshot(ctx context.Context, snapshot *domain.SourceBalance) {
	var unpriced []string
	for i := range snapshot.Balances {
		b := &snapshot.Balances[i]
		b.Symbol = strings.ToUpper(strings.TrimSpace(b.Symbol))
		if b.Price.IsZero() {
			unpriced = append(unpriced, b.Symbol)
		}
	}

	var prices map[string]decimal.Decimal
	if len(unpriced) > 0 && s.prices != nil {
		var err error
		prices, err = s.prices.GetPrices(ctx, unpriced)
		if err != nil {
			s.LogDebug(ctx, "Pricing balances failed", slog.String("source", snapshot.Source), slog.String("error", err.Error()))
		}
	}

	total := decimal.Zero
	for i := range snapshot.Balances {
		b := &snapshot.Balances[i]
		if b.Price.IsZero() {
			if p, ok := prices[b.Symbol]; ok {
				b.Price = p
			}
		}
		if !b.Price.IsZero() {
			b.Value = b.Amount.Mul(b.Price)
		}
		total = total.Add(b.Value)
	}
	snapshot.TotalValue = total
}

func (s *balanceService) GetBalances(ctx context.Context) (map[string]domain.SourceBalance, error) {
	out := map[string]domain.SourceBalance{}
	_ = s.session.View(func(state *domain.AppState, _ *domain.TransactionBook) error {
		for k, v := range state.Balances {
			v.Balances = append([]domain.Balance{}, v.Balances...)
			out[k] = v
		}
		return nil
	})
	return out, nil
}

func (s *balanceService) GetSummary(ctx context.Context) (*domain.PortfolioSummary, error) {
	sources, _ := s.GetBalances(ctx)
	var manual []domain.ManualAsset
	_ = s.session.View(func(state *domain.AppState, _ *domain.TransactionBook) error {
		manual = append([]domain.ManualAsset{}, state.ManualAssets...)
		return nil
	})

	var symbols []string
	for _, m := range manual {
		if m.Price == nil {
			symbols = append(symbols, m.Symbol)
		}
	}
	prices := map[string]decimal.Decimal{}
	if len(symbols) > 0 && s.prices != nil {
		fetched, err := s.prices.GetPrices(ctx, symbols)
		if err != nil {
			s.LogError(ctx, err, "Pricing manual assets failed")
		} else {
			prices = fetched
		}
	}

	summary := domain.Summarize(sources, manual, prices, s.Now())
	return &summary, nil
}

func labelOr(label, fallback string) string {
	if strings.TrimSpace(label) != "" {
		return label
	}
	return fallback
}
