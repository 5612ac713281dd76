package domain

import (
	"fmt"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
)

// TransactionBook stores trade legs in insertion order with an id index.
// It is not safe for concurrent use; callers serialize access.
type TransactionBook struct {
	records []Transaction
	index   map[string]int
}

// NewTransactionBook builds a book from persisted records. Records with a duplicate id
// after the first occurrence are dropped.
func NewTransactionBook(records []Transaction) *TransactionBook {
	b := &TransactionBook{
		records: make([]Transaction, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		if _, exists := b.index[r.ID]; exists || r.ID == "" {
			continue
		}
		b.index[r.ID] = len(b.records)
		b.records = append(b.records, r.Clone())
	}
	return b
}

// Len returns the number of stored records, deleted ones included.
func (b *TransactionBook) Len() int {
	return len(b.records)
}

// Get returns a copy of the record with the given id.
func (b *TransactionBook) Get(id string) (Transaction, bool) {
	i, ok := b.index[id]
	if !ok {
		return Transaction{}, false
	}
	return b.records[i].Clone(), true
}

// All returns copies of every record in insertion order.
func (b *TransactionBook) All() []Transaction {
	return b.collect(func(Transaction) bool { return true })
}

// Active returns copies of the records that are not soft-deleted.
func (b *TransactionBook) Active() []Transaction {
	return b.collect(func(t Transaction) bool { return !t.IsDeleted })
}

// Deleted returns copies of the soft-deleted records.
func (b *TransactionBook) Deleted() []Transaction {
	return b.collect(func(t Transaction) bool { return t.IsDeleted })
}

// Pairs runs the pairing pass over the current records.
func (b *TransactionBook) Pairs() []Pair {
	return BuildPairs(b.records)
}

// Statistics aggregates the active records.
func (b *TransactionBook) Statistics() Statistics {
	return ComputeStatistics(b.records)
}

// Insert appends new records. Either all records are inserted or none.
func (b *TransactionBook) Insert(records ...Transaction) error {
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: transaction id is required", apperrors.ErrValidation)
		}
		if _, exists := b.index[r.ID]; exists || seen[r.ID] {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, r.ID)
		}
		seen[r.ID] = true
	}
	for _, r := range records {
		b.index[r.ID] = len(b.records)
		b.records = append(b.records, r.Clone())
	}
	return nil
}

// Put replaces an existing record in place or appends it when the id is new.
func (b *TransactionBook) Put(record Transaction) {
	if i, ok := b.index[record.ID]; ok {
		b.records[i] = record.Clone()
		return
	}
	b.index[record.ID] = len(b.records)
	b.records = append(b.records, record.Clone())
}

// SoftDelete marks exactly one record as deleted. Its pair partner is not touched.
func (b *TransactionBook) SoftDelete(id string) error {
	return b.setDeleted(id, true)
}

// Restore clears the deleted flag of one record.
func (b *TransactionBook) Restore(id string) error {
	return b.setDeleted(id, false)
}

// HardDelete removes a record permanently. Links pointing at it are left dangling.
func (b *TransactionBook) HardDelete(id string) error {
	i, ok := b.index[id]
	if !ok {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, id)
	}
	b.records = append(b.records[:i], b.records[i+1:]...)
	delete(b.index, id)
	for j := i; j < len(b.records); j++ {
		b.index[b.records[j].ID] = j
	}
	return nil
}

// Update applies a partial update in place. pnl and apr are not recomputed; a record that
// stops being a sell loses them.
func (b *TransactionBook) Update(id string, patch TransactionPatch) (Transaction, error) {
	i, ok := b.index[id]
	if !ok {
		return Transaction{}, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, id)
	}
	updated := b.records[i].Clone()
	patch.Apply(&updated)
	updated.Normalize()
	if err := updated.Validate(); err != nil {
		return Transaction{}, err
	}
	b.records[i] = updated
	return updated.Clone(), nil
}

func (b *TransactionBook) setDeleted(id string, deleted bool) error {
	i, ok := b.index[id]
	if !ok {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, id)
	}
	b.records[i].IsDeleted = deleted
	return nil
}

func (b *TransactionBook) collect(keep func(Transaction) bool) []Transaction {
	out := make([]Transaction, 0, len(b.records))
	for _, r := range b.records {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}
