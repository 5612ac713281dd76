// Package csvio converts trade legs to and from the spreadsheet export format.
package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Column names, in export order.
const (
	ColDate     = "Date"
	ColType     = "Type"
	ColPlatform = "Platform"
	ColPair     = "Pair"
	ColAmount   = "Amount"
	ColPrice    = "Price"
	ColFee      = "Fee"
	ColPnL      = "PnL"
	ColAPR      = "APR"
	ColNotes    = "Notes"
	ColLink     = "Link"
	ColFills    = "Fills"
)

// Header is the first row of every export.
var Header = []string{ColDate, ColType, ColPlatform, ColPair, ColAmount, ColPrice, ColFee, ColPnL, ColAPR, ColNotes, ColLink, ColFills}

var requiredColumns = []string{ColDate, ColType, ColPlatform, ColPair, ColAmount, ColPrice}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RowError reports the first offending cell of an import. It matches apperrors.ErrImportFormat.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{apperrors.ErrImportFormat, e.Err}
}

// WriteTransactions writes the header and one row per record.
func WriteTransactions(w io.Writer, txs []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, t := range txs {
		if err := cw.Write(toRow(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toRow(t domain.Transaction) []string {
	return []string{
		t.Date.UTC().Format(time.RFC3339),
		string(t.Type),
		t.Platform,
		t.Pair,
		t.Amount.String(),
		t.Price.String(),
		t.Fee.String(),
		optional(t.PnL),
		optional(t.APR),
		t.Notes,
		t.Link,
		FormatFills(t.Fills),
	}
}

func optional(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// ReadTransactions parses a whole file. Columns are matched by header name in any order.
// Dates without a zone are read in loc. Any bad row fails the whole read.
func ReadTransactions(r io.Reader, loc *time.Location, newID func() string) ([]domain.Transaction, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &RowError{Line: 1, Err: errors.New("file is empty")}
	}
	if err != nil {
		return nil, csvError(err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, &RowError{Line: 1, Err: err}
	}

	var out []domain.Transaction
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if blank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)
		tx, err := parseRow(rowView{cols: cols, record: record}, loc, line)
		if err != nil {
			return nil, err
		}
		tx.ID = newID()
		out = append(out, tx)
	}
	return out, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &RowError{Line: pe.Line, Err: pe.Err}
	}
	return err
}

func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type rowView struct {
	cols   map[string]int
	record []string
}

func (v rowView) get(column string) string {
	i, ok := v.cols[strings.ToLower(column)]
	if !ok || i >= len(v.record) {
		return ""
	}
	return strings.TrimSpace(v.record[i])
}

func parseRow(v rowView, loc *time.Location, line int) (domain.Transaction, error) {
	fail := func(column string, err error) (domain.Transaction, error) {
		return domain.Transaction{}, &RowError{Line: line, Column: column, Err: err}
	}
	required := func(column string) (string, error) {
		val := v.get(column)
		if val == "" {
			return "", errors.New("value is required")
		}
		return val, nil
	}

	var tx domain.Transaction

	raw, err := required(ColDate)
	if err != nil {
		return fail(ColDate, err)
	}
	if tx.Date, err = domain.ParseDate(raw, loc); err != nil {
		return fail(ColDate, err)
	}

	raw, err = required(ColType)
	if err != nil {
		return fail(ColType, err)
	}
	switch domain.TransactionType(raw) {
	case domain.Buy, domain.Sell:
		tx.Type = domain.TransactionType(raw)
	default:
		return fail(ColType, fmt.Errorf("%q is not Buy or Sell", raw))
	}

	if tx.Platform, err = required(ColPlatform); err != nil {
		return fail(ColPlatform, err)
	}
	if tx.Pair, err = required(ColPair); err != nil {
		return fail(ColPair, err)
	}

	for _, num := range []struct {
		column string
		dst    *decimal.Decimal
		need   bool
	}{
		{ColAmount, &tx.Amount, true},
		{ColPrice, &tx.Price, true},
		{ColFee, &tx.Fee, false},
	} {
		raw := v.get(num.column)
		if raw == "" {
			if num.need {
				return fail(num.column, errors.New("value is required"))
			}
			*num.dst = decimal.Zero
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fail(num.column, fmt.Errorf("%q is not a number", raw))
		}
		*num.dst = d
	}

	for _, opt := range []struct {
		column string
		dst    **decimal.Decimal
	}{
		{ColPnL, &tx.PnL},
		{ColAPR, &tx.APR},
	} {
		raw := v.get(opt.column)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fail(opt.column, fmt.Errorf("%q is not a number", raw))
		}
		*opt.dst = &d
	}

	tx.Notes = v.get(ColNotes)
	tx.Link = v.get(ColLink)

	if tx.Fills, err = ParseFills(v.get(ColFills), loc); err != nil {
		return fail(ColFills, err)
	}

	tx.Normalize()
	if err := tx.Validate(); err != nil {
		return fail("", err)
	}
	return tx, nil
}
