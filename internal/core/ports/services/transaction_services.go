package services

import (
	"context"
	"io"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
)

// TransactionReaderSvc defines read operations over trade legs and their derived views.
type TransactionReaderSvc interface {
	// GetTransaction returns one record, deleted or not.
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)

	// ListTransactions returns a newest-first page of records.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// ListDeleted returns the recycle bin.
	ListDeleted(ctx context.Context) ([]domain.Transaction, error)

	// ListPairs pairs the active records and applies the filter.
	ListPairs(ctx context.Context, filter domain.PairFilter) ([]domain.Pair, error)

	// GetStatistics aggregates the active records.
	GetStatistics(ctx context.Context) (domain.Statistics, error)

	// AggregateFills previews the weighted summary of a fill list.
	AggregateFills(ctx context.Context, fills []domain.Fill) domain.FillSummary
}

// TransactionWriterSvc defines create and edit operations.
type TransactionWriterSvc interface {
	// CreateTrade stores a new buy leg, sell leg or both.
	CreateTrade(ctx context.Context, req dto.CreateTradeRequest) ([]domain.Transaction, error)

	// ReplaceTrade re-enters the trade that record id belongs to, keeping the ids and
	// re-deriving links, pnl and apr.
	ReplaceTrade(ctx context.Context, id string, req dto.CreateTradeRequest) ([]domain.Transaction, error)

	// UpdateTransaction applies a partial update without recomputing pnl or apr.
	UpdateTransaction(ctx context.Context, id string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)
}

// TransactionLifecycleSvc defines the soft-delete state machine.
type TransactionLifecycleSvc interface {
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	BulkSoftDelete(ctx context.Context, ids []string) domain.BulkResult
	BulkRestore(ctx context.Context, ids []string) domain.BulkResult
	BulkHardDelete(ctx context.Context, ids []string) domain.BulkResult
}

// TransactionTransferSvc defines CSV import and export.
type TransactionTransferSvc interface {
	// ImportCSV appends every row of the file or, on any bad row, nothing.
	ImportCSV(ctx context.Context, r io.Reader) (int, error)

	// ExportCSV writes the active records.
	ExportCSV(ctx context.Context, w io.Writer) error
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	TransactionLifecycleSvc
	TransactionTransferSvc
}
