package csvio

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	fillSeparator  = ";"
	dateSeparator  = "|"
	priceSeparator = "@"
)

// FormatFills renders fills as "<date> | <amount> @ <price>" entries joined by "; ".
// A fill without a date is written as "<amount> @ <price>".
func FormatFills(fills []domain.Fill) string {
	if len(fills) == 0 {
		return ""
	}
	parts := make([]string, len(fills))
	for i, f := range fills {
		entry := f.Amount.String() + " " + priceSeparator + " " + f.Price.String()
		if !f.Date.IsZero() {
			entry = f.Date.UTC().Format(time.RFC3339) + " " + dateSeparator + " " + entry
		}
		parts[i] = entry
	}
	return strings.Join(parts, fillSeparator+" ")
}

// ParseFills reads a Fills cell in either the inline grammar or the older JSON array form.
// An empty cell yields no fills.
func ParseFills(cell string, loc *time.Location) ([]domain.Fill, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	if strings.HasPrefix(cell, "[") {
		return parseLegacyFills(cell, loc)
	}

	var fills []domain.Fill
	for i, entry := range strings.Split(cell, fillSeparator) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fill, err := parseFillEntry(entry, loc)
		if err != nil {
			return nil, fmt.Errorf("fill %d (%q): %w", i+1, entry, err)
		}
		fills = append(fills, fill)
	}
	return fills, nil
}

func parseFillEntry(entry string, loc *time.Location) (domain.Fill, error) {
	var fill domain.Fill
	rest := entry
	if datePart, after, ok := strings.Cut(entry, dateSeparator); ok {
		rest = after
		if datePart = strings.TrimSpace(datePart); datePart != "" {
			d, err := domain.ParseDate(datePart, loc)
			if err != nil {
				return fill, err
			}
			fill.Date = d
		}
	}

	amountPart, pricePart, ok := strings.Cut(rest, priceSeparator)
	if !ok {
		return fill, fmt.Errorf("expected <amount> %s <price>", priceSeparator)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(amountPart))
	if err != nil {
		return fill, fmt.Errorf("invalid amount: %w", err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(pricePart))
	if err != nil {
		return fill, fmt.Errorf("invalid price: %w", err)
	}
	fill.Amount = amount
	fill.Price = price
	return fill, nil
}

type legacyFill struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

func parseLegacyFills(cell string, loc *time.Location) ([]domain.Fill, error) {
	var raw []legacyFill
	if err := json.Unmarshal([]byte(cell), &raw); err != nil {
		return nil, fmt.Errorf("invalid fills array: %w", err)
	}
	fills := make([]domain.Fill, 0, len(raw))
	for i, r := range raw {
		fill := domain.Fill{Price: r.Price, Amount: r.Amount}
		if strings.TrimSpace(r.Date) != "" {
			d, err := domain.ParseDate(r.Date, loc)
			if err != nil {
				return nil, fmt.Errorf("fill %d: %w", i+1, err)
			}
			fill.Date = d
		}
		fills = append(fills, fill)
	}
	return fills, nil
}
