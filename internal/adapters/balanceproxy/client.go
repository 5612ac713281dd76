package balanceproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portsclients "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/clients"
	"github.com/shopspring/decimal"
)

const (
	cexBalancePath   = "/api/cex/balance"
	chainBalancePath = "/api/chain/balance"

	maxErrorBody = 64 * 1024
)

// Client talks to the balance proxy that fronts exchange and chain APIs.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ portsclients.BalanceProxyFacade = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient creates a proxy client rooted at baseURL, e.g. http://localhost:3001.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type cexRequest struct {
	PlatformID string `json:"platformId"`
	APIKey     string `json:"apiKey"`
	APISecret  string `json:"apiSecret"`
	Password   string `json:"password,omitempty"`
}

type chainRequest struct {
	ChainType string   `json:"chainType"`
	Address   string   `json:"address"`
	Chains    []string `json:"chains,omitempty"`
}

// FetchCEXBalances reads the holdings of one exchange account.
func (c *Client) FetchCEXBalances(ctx context.Context, cfg domain.CexConfig) (*domain.SourceBalance, error) {
	body := cexRequest{
		PlatformID: cfg.PlatformID,
		APIKey:     cfg.APIKey,
		APISecret:  cfg.APISecret,
		Password:   cfg.Password,
	}
	resp, err := c.post(ctx, cexBalancePath, body)
	if err != nil {
		return nil, fmt.Errorf("%w: cex %s: %w", apperrors.ErrUpstream, cfg.PlatformID, err)
	}
	balances, err := resp.normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: cex %s: %w", apperrors.ErrUpstream, cfg.PlatformID, err)
	}
	return &domain.SourceBalance{
		Source:     domain.SourceKey(domain.SourceCEX, cfg.ID),
		Kind:       domain.SourceCEX,
		Balances:   balances,
		TotalValue: resp.total(balances),
	}, nil
}

// FetchChainBalances reads the holdings of one wallet.
func (c *Client) FetchChainBalances(ctx context.Context, wallet domain.Wallet) (*domain.SourceBalance, error) {
	body := chainRequest{
		ChainType: wallet.ChainType,
		Address:   wallet.Address,
		Chains:    wallet.Chains,
	}
	resp, err := c.post(ctx, chainBalancePath, body)
	if err != nil {
		return nil, fmt.Errorf("%w: chain %s %s: %w", apperrors.ErrUpstream, wallet.ChainType, wallet.Address, err)
	}
	balances, err := resp.normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: chain %s %s: %w", apperrors.ErrUpstream, wallet.ChainType, wallet.Address, err)
	}
	return &domain.SourceBalance{
		Source:     domain.SourceKey(domain.SourceChain, wallet.ID),
		Kind:       domain.SourceChain,
		Balances:   balances,
		TotalValue: resp.total(balances),
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*proxyResponse, error) {
	bb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bb))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(b))
		var pe proxyResponse
		if json.Unmarshal(b, &pe) == nil && pe.Error != "" {
			msg = pe.Error
		}
		return nil, fmt.Errorf("proxy http %d: %s", resp.StatusCode, msg)
	}

	var out proxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("proxy error: %s", out.Error)
	}
	return &out, nil
}

// proxyResponse covers both endpoints. Exchanges answer {platform, balances}, chains answer
// {chainType, address, balances, totalValue}.
type proxyResponse struct {
	Platform   string           `json:"platform,omitempty"`
	ChainType  string           `json:"chainType,omitempty"`
	Address    string           `json:"address,omitempty"`
	Balances   json.RawMessage  `json:"balances"`
	TotalValue *decimal.Decimal `json:"totalValue,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type balanceEntry struct {
	Symbol string           `json:"symbol"`
	Asset  string           `json:"asset"`
	Amount *decimal.Decimal `json:"amount"`
	Total  *decimal.Decimal `json:"total"`
	Type   string           `json:"type"`
	Price  *decimal.Decimal `json:"price"`
	Value  *decimal.Decimal `json:"value"`
}

type freeUsedTotal struct {
	Free  *decimal.Decimal `json:"free"`
	Used  *decimal.Decimal `json:"used"`
	Total *decimal.Decimal `json:"total"`
}

// normalize turns the balances field into canonical balances. Three shapes are accepted:
// a list of entries, a map of symbol to amount (number or string), and a map of symbol to
// {free, used, total}. Zero amounts are dropped.
func (r *proxyResponse) normalize() ([]domain.Balance, error) {
	raw := bytes.TrimSpace(r.Balances)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("response has no balances field")
	}

	switch raw[0] {
	case '[':
		var entries []balanceEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("decode balances list: %w", err)
		}
		out := make([]domain.Balance, 0, len(entries))
		for _, e := range entries {
			b, ok := e.toBalance()
			if ok {
				out = append(out, b)
			}
		}
		return out, nil
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode balances map: %w", err)
		}
		out := make([]domain.Balance, 0, len(m))
		for symbol, v := range m {
			amount, err := mapAmount(v)
			if err != nil {
				return nil, fmt.Errorf("balance %q: %w", symbol, err)
			}
			if amount.IsZero() {
				continue
			}
			out = append(out, domain.Balance{
				Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
				Amount: amount,
				Price:  decimal.Zero,
				Value:  decimal.Zero,
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected balances shape")
	}
}

func (e balanceEntry) toBalance() (domain.Balance, bool) {
	symbol := e.Symbol
	if symbol == "" {
		symbol = e.Asset
	}
	amount := e.Amount
	if amount == nil {
		amount = e.Total
	}
	if symbol == "" || amount == nil || amount.IsZero() {
		return domain.Balance{}, false
	}
	b := domain.Balance{
		Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
		Amount: *amount,
		Type:   e.Type,
		Price:  decimal.Zero,
		Value:  decimal.Zero,
	}
	if e.Price != nil {
		b.Price = *e.Price
	}
	if e.Value != nil {
		b.Value = *e.Value
	} else if e.Price != nil {
		b.Value = amount.Mul(*e.Price)
	}
	return b, true
}

func mapAmount(v json.RawMessage) (decimal.Decimal, error) {
	v = bytes.TrimSpace(v)
	if len(v) > 0 && v[0] == '{' {
		var fut freeUsedTotal
		if err := json.Unmarshal(v, &fut); err != nil {
			return decimal.Zero, err
		}
		if fut.Total != nil {
			return *fut.Total, nil
		}
		sum := decimal.Zero
		if fut.Free != nil {
			sum = sum.Add(*fut.Free)
		}
		if fut.Used != nil {
			sum = sum.Add(*fut.Used)
		}
		return sum, nil
	}
	if bytes.Equal(v, []byte("null")) {
		return decimal.Zero, nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(v); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func (r *proxyResponse) total(balances []domain.Balance) decimal.Decimal {
	if r.TotalValue != nil {
		return *r.TotalValue
	}
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Value)
	}
	return sum
}
