package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/SscSPs/crypto_bookkeeper/internal/utils/ids"
)

type settingsService struct {
	BaseService
	session *Session
	newID   ids.Generator
}

// NewSettingsService creates the service managing exchange accounts, wallets, manual assets
// and preferences. A nil generator falls back to ULIDs.
func NewSettingsService(session *Session, newID ids.Generator) portssvc.SettingsSvcFacade {
	if newID == nil {
		newID = ids.New
	}
	return &settingsService{session: session, newID: newID}
}

var _ portssvc.SettingsSvcFacade = (*settingsService)(nil)

func (s *settingsService) ListCexConfigs(ctx context.Context) ([]domain.CexConfig, error) {
	var out []domain.CexConfig
	_ = s.session.View(func(state *domain.AppState, _ *domain.TransactionBook) error {
		out = append([]domain.CexConfig{}, state.CexConfigs...)
		return nil
	})
	return out, nil
}

func (s *settingsService) SaveCexConfig(ctx context.Context, req dto.SaveCexConfigRequest) (*domain.CexConfig, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	cfg := domain.CexConfig{
		ID:         req.ID,
		PlatformID: strings.ToLower(strings.TrimSpace(req.PlatformID)),
		Name:       strings.TrimSpace(req.Name),
		APIKey:     req.APIKey,
		APISecret:  req.APISecret,
		Password:   req.Password,
		Disabled:   req.Disabled,
	}

	err := s.session.Mutate(func(state *domain.AppState, _ *domain.TransactionBook) error {
		if cfg.ID == "" {
			cfg.ID = s.newID()
			state.CexConfigs = append(state.CexConfigs, cfg)
			state.CexExchangeOrder = append(state.CexExchangeOrder, cfg.ID)
			return nil
		}
		i := indexOf(state.CexConfigs, func(c domain.CexConfig) bool { return c.ID == cfg.ID })
		if i < 0 {
			return fmt.Errorf("%w: exchange account %s", apperrors.ErrNotFound, cfg.ID)
		}
		state.CexConfigs = replaceAt(state.CexConfigs, i, cfg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Exchange account saved", slog.String("cex_id", cfg.ID), slog.String("platform", cfg.PlatformID))
	return &cfg, nil
}

func (s *settingsService) DeleteCexConfig(ctx context.Context, id string) error {
	return s.session.Mutate(func(state *domain.AppState, _ *domain.TransactionBook) error {
		i := indexOf(state.CexConfigs, func(c domain.CexConfig) bool { return c.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: exchange account %s", apperrors.ErrNotFound, id)
		}
		state.CexConfigs = removeAt(state.CexConfigs, i)
		state.CexExchangeOrder = removeValue(state.CexExchangeOrder, id)
		balances := make(map[string]domain.SourceBalance, len(state.Balances))
		for k, v := range state.Balances {
			if k != domain.SourceKey(domain.SourceCEX, id) {
				balances[k] = v
			}
		}
		state.Balances = balances
		return nil
	})
}

func (s *settingsService) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	var out []domain.Wallet
	_ = s.session.View(func(state *domain.AppState, _ *domain.TransactionBook) error {
		out = append([]domain.Wallet{}, state.Wallets...)
		return nil
	})
	return out, nil
}

func (s *settingsService) SaveWallet(ctx context.Context, req dto.SaveWalletRequest) (*domain.Wallet, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	wallet := domain.Wallet{
		ID:        req.ID,
		Name:      strings.TrimSpace(req.Name),
		ChainType: strings.ToLower(strings.TrimSpace(req.ChainType)),
		Address:   strings.TrimSpace(req.Address),
		Chains:    append([]string(nil), req.Chains...),
	}

	err := s.session.Mutate(func(state *domain.AppState, _ *domain.TransactionBook) error {
		if wallet.ID == "" {
			wallet.ID = s.newID()
			state.Wallets = append(state.Wallets, wallet)
			return nil
		}
		i := indexOf(state.Wallets, func(w domain.Wallet) bool { return w.ID == wallet.ID })
		if i < 0 {
			return fmt.Errorf("%w: wallet %s", apperrors.ErrNotFound, wallet.ID)
		}
		state.Wallets = replaceAt(state.Wallets, i, wallet)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *settingsService) DeleteWallet(ctx context.Context, id string) error {
	return s.session.Mutate(func(state *domain.AppState, _ *domain.TransactionBook) error {
		i := indexOf(state.Wallets, func(w domain.Wallet) bool { return w.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: wallet %s", apperrors.ErrNotFound, id)
		}
		state.Wallets = removeAt(state.Wallets, i)
		balances := make(map[string]domain.SourceBalance, len(state.Balances))
		for k, v := range state.Balances {
			if k != domain.SourceKey(domain.SourceChain, id) {
				balances[k] = v
			}
		}
		state.Balances = balances
		return nil
	})
}

func (s *settingsService) ListManualAssets(ctx context.Context) ([]domain.ManualAsset, error) {
	var out []domain.ManualAsset
	_ = s.session.View(func(state *domain.AppState, _ *domain.TransactionBook) error {
		out = append([]domain.ManualAsset{}, state.ManualAssets...)
		return nil
	})
	return out, nil
}

func (s *settingsService) SaveManualAsset(ctx context.Context, req dto.SaveManualAssetRequest) (*domain.ManualAsset, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() || (req.Price != nil && req.Price.IsNegative()) {
		return nil, fmt.Errorf("%w: amount and price must not be negative", apperrors.ErrValidation)
	}
	asset := domain.ManualAsset{
		ID:       req.ID,
		Symbol:   strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Amount:   *req.Amount,
		Location: strings.TrimSpace(req.Location),
		Price:    req.Price,
		Notes:    req.Notes,
	}

	err := s.session.Mutate(func(state *domain.AppState, _ *domain.TransactionBook) error {
		if asset.ID == "" {
			asset.ID = s.newID()
			state.ManualAssets = append(state.ManualAssets, asset)
			return nil
		}
		i := indexOf(state.ManualAssets, func(m domain.ManualAsset) bool { return m.ID == asset.ID })
		if i < 0 {
			return fmt.Errorf("%w: manual asset %s", apperrors.ErrNotFound, asset.ID)
		}
		state.ManualAssets = replaceAt(state.ManualAssets, i, asset)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *settingsService) DeleteManualAsset(ctx context.Context, id string) error {
	return s.session.Mutate(func(state *domain.AppState, _ *domain.TransactionBook) error {
		i := indexOf(state.ManualAssets, func(m domain.ManualAsset) bool { return m.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: manual asset %s", apperrors.ErrNotFound, id)
		}
		state.ManualAssets = removeAt(state.ManualAssets, i)
		return nil
	})
}

func (s *settingsService) GetPreferences(ctx context.Context) (*dto.PreferencesResponse, error) {
	var prefs dto.PreferencesResponse
	_ = s.session.View(func(state *domain.AppState, _ *domain.TransactionBook) error {
		prefs = preferencesOf(state)
		return nil
	})
	return &prefs, nil
}

func (s *settingsService) UpdatePreferences(ctx context.Context, req dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	var prefs dto.PreferencesResponse
	err := s.session.Mutate(func(state *domain.AppState, _ *domain.TransactionBook) error {
		if req.HideAmounts != nil {
			state.HideAmounts = *req.HideAmounts
		}
		if req.MonitoredCoins != nil {
			coins := make([]string, 0, len(*req.MonitoredCoins))
			for _, c := range *req.MonitoredCoins {
				if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
					coins = append(coins, c)
				}
			}
			state.MonitoredCoins = coins
		}
		if req.CexExchangeOrder != nil {
			state.CexExchangeOrder = append([]string{}, *req.CexExchangeOrder...)
		}
		prefs = preferencesOf(state)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func preferencesOf(state *domain.AppState) dto.PreferencesResponse {
	return dto.PreferencesResponse{
		HideAmounts:      state.HideAmounts,
		MonitoredCoins:   append([]string{}, state.MonitoredCoins...),
		CexExchangeOrder: append([]string{}, state.CexExchangeOrder...),
	}
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func replaceAt[T any](items []T, i int, item T) []T {
	out := append([]T{}, items...)
	out[i] = item
	return out
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func removeValue(items []string, v string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
