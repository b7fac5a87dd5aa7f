package tax

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/shared"
)

// MemoryLedger is an in-memory, append-only Ledger implementation.
// Tests inject it directly; production uses the GORM-backed ledger.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries []TcsTransaction
	nextSeq int64
}

// NewMemoryLedger creates an empty in-memory TCS ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{nextSeq: 1}
}

// CumulativeSaleAmount implements Ledger
func (l *MemoryLedger) CumulativeSaleAmount(_ context.Context, customerID uuid.UUID, fy FinancialYear) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sum := decimal.Zero
	for _, txn := range l.entries {
		if txn.CustomerID == customerID && txn.FinancialYear == fy.String() {
			sum = sum.Add(txn.SaleAmount)
		}
	}
	return sum, nil
}

// Append implements Ledger
func (l *MemoryLedger) Append(_ context.Context, txn *TcsTransaction) error {
	if txn == nil {
		return shared.ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	txn.Seq = l.nextSeq
	l.nextSeq++
	l.entries = append(l.entries, *txn)
	return nil
}

// Transactions returns a copy of all recorded transactions in insertion order
func (l *MemoryLedger) Transactions() []TcsTransaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]TcsTransaction, len(l.entries))
	copy(out, l.entries)
	return out
}
