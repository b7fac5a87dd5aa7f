package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/tax"
)

// GormTcsLedger implements tax.Ledger over an append-only tcs_transactions
// table. Rows are write-once: no update path exists, so a transaction's
// cumulative snapshot can never be rewritten.
type GormTcsLedger struct {
	db *gorm.DB
}

// NewGormTcsLedger creates a new GormTcsLedger
func NewGormTcsLedger(db *gorm.DB) *GormTcsLedger {
	return &GormTcsLedger{db: db}
}

// CumulativeSaleAmount sums the sale amounts recorded for the customer in
// the financial year
func (l *GormTcsLedger) CumulativeSaleAmount(ctx context.Context, customerID uuid.UUID, fy tax.FinancialYear) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := l.db.WithContext(ctx).
		Model(&tax.TcsTransaction{}).
		Where("customer_id = ? AND financial_year = ?", customerID, fy.String()).
		Select("SUM(sale_amount)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Append records a new TCS transaction inside a database transaction
func (l *GormTcsLedger) Append(ctx context.Context, txn *tax.TcsTransaction) error {
	if txn.ID == uuid.Nil {
		return shared.ErrInvalidInput
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(txn).Error
	})
}

// TransactionsForQuarter returns the customer's TCS transactions for one
// quarter of a financial year, in insertion order. Feeds Form 27EQ returns.
func (l *GormTcsLedger) TransactionsForQuarter(ctx context.Context, fy tax.FinancialYear, quarter int) ([]tax.TcsTransaction, error) {
	var txns []tax.TcsTransaction
	if err := l.db.WithContext(ctx).
		Where("financial_year = ? AND quarter = ?", fy.String(), quarter).
		Order("seq ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
