package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	portsclients "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/clients"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const simplePricePath = "/simple/price"

// knownIDs maps common tickers to CoinGecko coin ids. Unknown tickers are looked up by their
// lowercase symbol.
var knownIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"TRX":   "tron",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"POL":   "polygon-ecosystem-token",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"LTC":   "litecoin",
	"ATOM":  "cosmos",
	"UNI":   "uniswap",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"TON":   "the-open-network",
	"SUI":   "sui",
	"APT":   "aptos",
	"NEAR":  "near",
	"DAI":   "dai",
	"SHIB":  "shiba-inu",
	"PEPE":  "pepe",
	"OKB":   "okb",
}

// CoinGecko resolves USD prices from a CoinGecko compatible simple/price endpoint.
type CoinGecko struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	ids     map[string]string
}

var _ portsclients.PriceOracle = (*CoinGecko)(nil)

// Option configures a CoinGecko client.
type Option func(*CoinGecko)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *CoinGecko) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CoinGecko) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout}
		}
	}
}

// WithLimiter throttles outgoing requests.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *CoinGecko) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithCoinIDs adds or overrides ticker to coin id mappings.
func WithCoinIDs(ids map[string]string) Option {
	return func(c *CoinGecko) {
		for sym, id := range ids {
			c.ids[strings.ToUpper(sym)] = id
		}
	}
}

// NewCoinGecko creates a price client rooted at baseURL, e.g. https://api.coingecko.com/api/v3.
// The public API allows roughly 30 calls a minute; the default limiter stays under that.
func NewCoinGecko(baseURL string, opts ...Option) *CoinGecko {
	c := &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
		ids:     make(map[string]string, len(knownIDs)),
	}
	for sym, id := range knownIDs {
		c.ids[sym] = id
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CoinID returns the coin id queried for symbol.
func (c *CoinGecko) CoinID(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if id, ok := c.ids[symbol]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

// FetchUSDPrices returns the USD price of every symbol the feed knows. Unknown symbols are
// left out of the result.
func (c *CoinGecko) FetchUSDPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	bySymbol := make(map[string]string, len(symbols))
	idSet := map[string]struct{}{}
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		id := c.CoinID(sym)
		bySymbol[sym] = id
		idSet[id] = struct{}{}
	}
	if len(idSet) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	doc, err := c.get(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko: %w", apperrors.ErrUpstream, err)
	}

	for sym, id := range bySymbol {
		price, ok := extractUSD(doc, id)
		if ok {
			out[sym] = price
		}
	}
	return out, nil
}

func (c *CoinGecko) get(ctx context.Context, ids []string) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL + simplePricePath)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var doc any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("unexpected response shape")
	}
	return doc, nil
}

// extractUSD reads $["<id>"].usd from the decoded document.
func extractUSD(doc any, id string) (decimal.Decimal, bool) {
	path := fmt.Sprintf("$[%q].usd", id)
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return decimal.Zero, false
	}
	// jsonpath may hand back a one element list
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return decimal.Zero, false
		}
		jval = jlist[0]
	}

	switch v := jval.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(v)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
