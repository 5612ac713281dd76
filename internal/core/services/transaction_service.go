package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/csvio"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/SscSPs/crypto_bookkeeper/internal/utils/ids"
	"github.com/SscSPs/crypto_bookkeeper/internal/utils/pagination"
)

const defaultPageSize = 50

type transactionService struct {
	BaseService
	session *Session
	newID   ids.Generator
	loc     *time.Location
}

// TransactionServiceOption configures the transaction service.
type TransactionServiceOption func(*transactionService)

// WithIDGenerator replaces the ULID generator.
func WithIDGenerator(gen ids.Generator) TransactionServiceOption {
	return func(s *transactionService) {
		s.newID = gen
	}
}

// WithClock replaces the wall clock used for relative date filters.
func WithClock(now func() time.Time) TransactionServiceOption {
	return func(s *transactionService) {
		s.now = now
	}
}

// WithLocation sets the zone used for CSV dates that carry none.
func WithLocation(loc *time.Location) TransactionServiceOption {
	return func(s *transactionService) {
		s.loc = loc
	}
}

// NewTransactionService creates the trade ledger service.
func NewTransactionService(session *Session, opts ...TransactionServiceOption) portssvc.TransactionSvcFacade {
	s := &transactionService{
		session: session,
		newID:   ids.New,
		loc:     time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := s.session.View(func(_ *domain.AppState, book *domain.TransactionBook) error {
		found, ok := book.Get(id)
		if !ok {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, id)
		}
		tx = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var records []domain.Transaction
	_ = s.session.View(func(_ *domain.AppState, book *domain.TransactionBook) error {
		if params.IncludeDeleted {
			records = book.All()
		} else {
			records = book.Active()
		}
		return nil
	})
	sortNewestFirst(records)

	if params.NextToken != "" {
		cursorDate, cursorID, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			s.LogDebug(ctx, "Rejected pagination token", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		start := sort.Search(len(records), func(i int) bool {
			return pagination.After(records[i].Date, records[i].ID, cursorDate, cursorID)
		})
		records = records[start:]
	}

	resp := &dto.ListTransactionsResponse{}
	if len(records) > limit {
		last := records[limit-1]
		token := pagination.EncodeToken(last.Date, last.ID)
		resp.NextToken = &token
		records = records[:limit]
	}
	resp.Transactions = dto.ToTransactionResponses(records)
	return resp, nil
}

func (s *transactionService) ListDeleted(ctx context.Context) ([]domain.Transaction, error) {
	var deleted []domain.Transaction
	_ = s.session.View(func(_ *domain.AppState, book *domain.TransactionBook) error {
		deleted = book.Deleted()
		return nil
	})
	sortNewestFirst(deleted)
	return deleted, nil
}

func (s *transactionService) ListPairs(ctx context.Context, filter domain.PairFilter) ([]domain.Pair, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	var pairs []domain.Pair
	_ = s.session.View(func(_ *domain.AppState, book *domain.TransactionBook) error {
		pairs = book.Pairs()
		return nil
	})
	return filter.Apply(pairs, s.Now()), nil
}

func (s *transactionService) GetStatistics(ctx context.Context) (domain.Statistics, error) {
	var stats domain.Statistics
	_ = s.session.View(func(_ *domain.AppState, book *domain.TransactionBook) error {
		stats = book.Statistics()
		return nil
	})
	return stats, nil
}

func (s *transactionService) AggregateFills(ctx context.Context, fills []domain.Fill) domain.FillSummary {
	return domain.AggregateFills(fills)
}

func (s *transactionService) CreateTrade(ctx context.Context, req dto.CreateTradeRequest) ([]domain.Transaction, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	trade, err := s.buildTrade(req, "", "")
	if err != nil {
		return nil, err
	}
	if trade.Sell != nil && trade.Buy == nil {
		trade.Sell.RelatedTransactionID = req.ExistingBuyID
	}

	var saved []domain.Transaction
	err = s.session.Mutate(func(_ *domain.AppState, book *domain.TransactionBook) error {
		var err error
		saved, err = book.SaveTrade(trade)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create trade")
		return nil, err
	}

	s.LogInfo(ctx, "Trade created", slog.Int("legs", len(saved)))
	return saved, nil
}

func (s *transactionService) ReplaceTrade(ctx context.Context, id string, req dto.CreateTradeRequest) ([]domain.Transaction, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var saved []domain.Transaction
	err := s.session.Mutate(func(_ *domain.AppState, book *domain.TransactionBook) error {
		target, ok := book.Get(id)
		if !ok {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, id)
		}

		buyID, sellID := target.ID, target.RelatedTransactionID
		if target.Type == domain.Sell {
			buyID, sellID = target.RelatedTransactionID, target.ID
		}
		if partner, ok := book.Get(target.RelatedTransactionID); !ok || partner.Type == target.Type {
			if target.Type == domain.Sell {
				buyID = ""
			} else {
				sellID = ""
			}
		}

		trade, err := s.buildTrade(req, buyID, sellID)
		if err != nil {
			return err
		}
		switch {
		case trade.Sell != nil && trade.Buy == nil:
			trade.Sell.RelatedTransactionID = buyID
			if req.ExistingBuyID != "" {
				trade.Sell.RelatedTransactionID = req.ExistingBuyID
			}
		case trade.Buy != nil && trade.Sell == nil:
			trade.Buy.RelatedTransactionID = sellID
		}

		saved, err = book.SaveTrade(trade)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to replace trade", slog.String("transaction_id", id))
		return nil, err
	}
	return saved, nil
}

// buildTrade converts the request legs, reusing the given ids and minting new ones for legs
// that have none.
func (s *transactionService) buildTrade(req dto.CreateTradeRequest, buyID, sellID string) (domain.Trade, error) {
	var trade domain.Trade
	if req.Buy != nil {
		if buyID == "" {
			buyID = s.newID()
		}
		buy, err := req.Buy.ToTransaction(buyID, domain.Buy)
		if err != nil {
			return trade, err
		}
		trade.Buy = &buy
	}
	if req.Sell != nil {
		if sellID == "" {
			sellID = s.newID()
		}
		sell, err := req.Sell.ToTransaction(sellID, domain.Sell)
		if err != nil {
			return trade, err
		}
		trade.Sell = &sell
	}
	return trade, nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, id string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var updated domain.Transaction
	err := s.session.Mutate(func(_ *domain.AppState, book *domain.TransactionBook) error {
		var err error
		updated, err = book.Update(id, req.ToPatch())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *transactionService) SoftDelete(ctx context.Context, id string) error {
	return s.session.Mutate(func(_ *domain.AppState, book *domain.TransactionBook) error {
		return book.SoftDelete(id)
	})
}

func (s *transactionService) Restore(ctx context.Context, id string) error {
	return s.session.Mutate(func(_ *domain.AppState, book *domain.TransactionBook) error {
		return book.Restore(id)
	})
}

func (s *transactionService) HardDelete(ctx context.Context, id string) error {
	err := s.session.Mutate(func(_ *domain.AppState, book *domain.TransactionBook) error {
		return book.HardDelete(id)
	})
	if err == nil {
		s.LogInfo(ctx, "Transaction permanently deleted", slog.String("transaction_id", id))
	}
	return err
}

func (s *transactionService) BulkSoftDelete(ctx context.Context, ids []string) domain.BulkResult {
	return s.bulk(ctx, "soft_delete", ids, (*domain.TransactionBook).BulkSoftDelete)
}

func (s *transactionService) BulkRestore(ctx context.Context, ids []string) domain.BulkResult {
	return s.bulk(ctx, "restore", ids, (*domain.TransactionBook).BulkRestore)
}

func (s *transactionService) BulkHardDelete(ctx context.Context, ids []string) domain.BulkResult {
	return s.bulk(ctx, "purge", ids, (*domain.TransactionBook).BulkHardDelete)
}

func (s *transactionService) bulk(ctx context.Context, op string, ids []string, apply func(*domain.TransactionBook, []string) domain.BulkResult) domain.BulkResult {
	var result domain.BulkResult
	_ = s.session.Mutate(func(_ *domain.AppState, book *domain.TransactionBook) error {
		result = apply(book, ids)
		if len(result.Succeeded) == 0 {
			return errNoChange
		}
		return nil
	})
	s.LogInfo(ctx, "Bulk operation finished",
		slog.String("operation", op),
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)))
	return result
}

func (s *transactionService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	txs, err := csvio.ReadTransactions(r, s.loc, s.newID)
	if err != nil {
		s.LogDebug(ctx, "CSV import rejected", slog.String("error", err.Error()))
		return 0, err
	}
	if len(txs) == 0 {
		return 0, nil
	}

	err = s.session.Mutate(func(_ *domain.AppState, book *domain.TransactionBook) error {
		return book.Insert(txs...)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to store imported transactions")
		return 0, err
	}
	s.LogInfo(ctx, "CSV import finished", slog.Int("imported", len(txs)))
	return len(txs), nil
}

func (s *transactionService) ExportCSV(ctx context.Context, w io.Writer) error {
	var active []domain.Transaction
	_ = s.session.View(func(_ *domain.AppState, book *domain.TransactionBook) error {
		active = book.Active()
		return nil
	})
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Date.Before(active[j].Date)
	})
	if err := csvio.WriteTransactions(w, active); err != nil {
		return fmt.Errorf("failed to write csv export: %w", err)
	}
	return nil
}

func sortNewestFirst(records []domain.Transaction) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID > records[j].ID
	})
}
