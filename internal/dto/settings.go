package dto

import (
	"strings"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SaveCexConfigRequest creates or replaces an exchange account. An empty ID creates.
type SaveCexConfigRequest struct {
	ID         string `json:"id"`
	PlatformID string `json:"platformId" binding:"required"`
	Name       string `json:"name"`
	APIKey     string `json:"apiKey" binding:"required"`
	APISecret  string `json:"apiSecret" binding:"required"`
	Password   string `json:"password"`
	Disabled   bool   `json:"disabled"`
}

// CexConfigResponse never echoes secrets back.
type CexConfigResponse struct {
	ID         string `json:"id"`
	PlatformID string `json:"platformId"`
	Name       string `json:"name,omitempty"`
	APIKeyHint string `json:"apiKeyHint"`
	HasSecret  bool   `json:"hasSecret"`
	Disabled   bool   `json:"disabled"`
}

// ToCexConfigResponse converts a domain.CexConfig, masking all but the last four key characters.
func ToCexConfigResponse(c domain.CexConfig) CexConfigResponse {
	hint := c.APIKey
	if len(hint) > 4 {
		hint = strings.Repeat("*", len(hint)-4) + hint[len(hint)-4:]
	}
	return CexConfigResponse{
		ID:         c.ID,
		PlatformID: c.PlatformID,
		Name:       c.Name,
		APIKeyHint: hint,
		HasSecret:  c.APISecret != "",
		Disabled:   c.Disabled,
	}
}

// ToCexConfigResponses converts a slice of exchange configs.
func ToCexConfigResponses(cfgs []domain.CexConfig) []CexConfigResponse {
	out := make([]CexConfigResponse, len(cfgs))
	for i, c := range cfgs {
		out[i] = ToCexConfigResponse(c)
	}
	return out
}

// SaveWalletRequest creates or replaces a watched wallet. An empty ID creates.
type SaveWalletRequest struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ChainType string   `json:"chainType" binding:"required"`
	Address   string   `json:"address" binding:"required"`
	Chains    []string `json:"chains"`
}

// SaveManualAssetRequest creates or replaces a manual holding. An empty ID creates.
type SaveManualAssetRequest struct {
	ID       string           `json:"id"`
	Symbol   string           `json:"symbol" binding:"required"`
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
	Location string           `json:"location"`
	Price    *decimal.Decimal `json:"price"`
	Notes    string           `json:"notes"`
}

// UpdatePreferencesRequest changes display and watch-list preferences. Omitted fields are kept.
type UpdatePreferencesRequest struct {
	HideAmounts      *bool     `json:"hideAmounts"`
	MonitoredCoins   *[]string `json:"monitoredCoins"`
	CexExchangeOrder *[]string `json:"cexExchangeOrder"`
}

// PreferencesResponse is the current preference set.
type PreferencesResponse struct {
	HideAmounts      bool     `json:"hideAmounts"`
	MonitoredCoins   []string `json:"monitoredCoins"`
	CexExchangeOrder []string `json:"cexExchangeOrder"`
}

// ImportBackupResponse reports whether a backup file was applied.
type ImportBackupResponse struct {
	Imported bool `json:"imported"`
}
