package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StateVersion is the current persisted state schema version.
const StateVersion = 1

// CexConfig holds the credentials of one centralized exchange account.
type CexConfig struct {
	ID         string `json:"id"`
	PlatformID string `json:"platformId"`
	Name       string `json:"name,omitempty"`
	APIKey     string `json:"apiKey"`
	APISecret  string `json:"apiSecret"`
	Password   string `json:"password,omitempty"`
	Disabled   bool   `json:"disabled,omitempty"`
}

// Wallet is an on-chain address watched on one or more chains.
type Wallet struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	ChainType string   `json:"chainType"`
	Address   string   `json:"address"`
	Chains    []string `json:"chains,omitempty"`
}

// FiatTransaction is a fiat deposit or withdrawal.
type FiatTransaction struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Type     string          `json:"type"`
	Platform string          `json:"platform"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    string          `json:"notes,omitempty"`
}

// Tag is a user label.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// AIConfig stores the analysis assistant settings. It is carried through backups untouched.
type AIConfig struct {
	Provider string `json:"provider,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
	Model    string `json:"model,omitempty"`
	BaseURL  string `json:"baseUrl,omitempty"`
}

// ManualAsset is a holding entered by hand (cold storage, off-exchange positions).
type ManualAsset struct {
	ID       string           `json:"id"`
	Symbol   string           `json:"symbol"`
	Amount   decimal.Decimal  `json:"amount"`
	Location string           `json:"location,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Notes    string           `json:"notes,omitempty"`
}

// AppState is everything the application persists.
type AppState struct {
	Transactions     []Transaction            `json:"transactions"`
	CexConfigs       []CexConfig              `json:"cexConfigs"`
	FiatTransactions []FiatTransaction        `json:"fiatTransactions"`
	MonitoredCoins   []string                 `json:"monitoredCoins"`
	Wallets          []Wallet                 `json:"wallets"`
	Tags             []Tag                    `json:"tags"`
	AIConfig         AIConfig                 `json:"aiConfig"`
	CexExchangeOrder []string                 `json:"cexExchangeOrder"`
	ManualAssets     []ManualAsset            `json:"manualAssets"`
	HideAmounts      bool                     `json:"hideAmounts"`
	Balances         map[string]SourceBalance `json:"balances"`
}

// NewAppState returns the initial state.
func NewAppState() AppState {
	s := AppState{}
	s.Normalize()
	return s
}

// Normalize replaces missing collections with their empty defaults so older saves stay readable.
func (s *AppState) Normalize() {
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	if s.CexConfigs == nil {
		s.CexConfigs = []CexConfig{}
	}
	if s.FiatTransactions == nil {
		s.FiatTransactions = []FiatTransaction{}
	}
	if s.MonitoredCoins == nil {
		s.MonitoredCoins = []string{}
	}
	if s.Wallets == nil {
		s.Wallets = []Wallet{}
	}
	if s.Tags == nil {
		s.Tags = []Tag{}
	}
	if s.CexExchangeOrder == nil {
		s.CexExchangeOrder = []string{}
	}
	if s.ManualAssets == nil {
		s.ManualAssets = []ManualAsset{}
	}
	if s.Balances == nil {
		s.Balances = map[string]SourceBalance{}
	}
}

// PersistedState is the envelope written to storage.
type PersistedState struct {
	State   AppState `json:"state"`
	Version int      `json:"version"`
}

// Clone returns a deep copy that shares no slices, maps or pointers with s.
func (s AppState) Clone() AppState {
	out := s
	out.Transactions = make([]Transaction, len(s.Transactions))
	for i, t := range s.Transactions {
		out.Transactions[i] = t.Clone()
	}
	out.CexConfigs = append([]CexConfig(nil), s.CexConfigs...)
	out.FiatTransactions = append([]FiatTransaction(nil), s.FiatTransactions...)
	out.MonitoredCoins = append([]string(nil), s.MonitoredCoins...)
	out.Wallets = make([]Wallet, len(s.Wallets))
	for i, w := range s.Wallets {
		w.Chains = append([]string(nil), w.Chains...)
		out.Wallets[i] = w
	}
	out.Tags = append([]Tag(nil), s.Tags...)
	out.CexExchangeOrder = append([]string(nil), s.CexExchangeOrder...)
	out.ManualAssets = make([]ManualAsset, len(s.ManualAssets))
	for i, m := range s.ManualAssets {
		m.Price = copyDecimal(m.Price)
		out.ManualAssets[i] = m
	}
	out.Balances = make(map[string]SourceBalance, len(s.Balances))
	for k, v := range s.Balances {
		v.Balances = append([]Balance(nil), v.Balances...)
		out.Balances[k] = v
	}
	out.Normalize()
	return out
}
