package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/tax"
)

// tcsTransactionSQLite mirrors tax.TcsTransaction without the Postgres
// autoincrement sequence column, which SQLite only supports on primary keys
type tcsTransactionSQLite struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq                  int64     `gorm:"uniqueIndex"`
	CustomerID           uuid.UUID `gorm:"type:uuid;index"`
	FinancialYear        string    `gorm:"index"`
	Quarter              int
	TransactionDate      time.Time
	SaleAmount           decimal.Decimal `gorm:"type:numeric(14,2)"`
	CumulativeSaleAmount decimal.Decimal `gorm:"type:numeric(16,2)"`
	TaxableAmount        decimal.Decimal `gorm:"type:numeric(14,2)"`
	Rate                 decimal.Decimal `gorm:"type:numeric(6,3)"`
	Amount               decimal.Decimal `gorm:"type:numeric(14,2)"`
	Type                 string
	PAN                  string
	CreatedAt            time.Time
}

func (tcsTransactionSQLite) TableName() string {
	return "tcs_transactions"
}

func setupTcsLedgerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&tcsTransactionSQLite{})
	require.NoError(t, err)

	return db
}

func newTcsTransaction(seq int64, customerID uuid.UUID, fy tax.FinancialYear, quarter int, saleAmount string) *tax.TcsTransaction {
	sale := decimal.RequireFromString(saleAmount)
	return &tax.TcsTransaction{
		ID:                   uuid.New(),
		Seq:                  seq,
		CustomerID:           customerID,
		FinancialYear:        fy.String(),
		Quarter:              quarter,
		TransactionDate:      fy.Start().AddDate(0, 3*(quarter-1), 0),
		SaleAmount:           sale,
		CumulativeSaleAmount: sale,
		TaxableAmount:        decimal.Zero,
		Rate:                 decimal.Zero,
		Amount:               decimal.Zero,
		Type:                 tax.TcsBelowThreshold,
	}
}

func TestGormTcsLedger_CumulativeSaleAmount(t *testing.T) {
	db := setupTcsLedgerTestDB(t)
	ledger := NewGormTcsLedger(db)
	ctx := context.Background()

	customerID := uuid.New()
	fy := tax.FinancialYearOf(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	t.Run("returns zero for an empty ledger", func(t *testing.T) {
		total, err := ledger.CumulativeSaleAmount(ctx, customerID, fy)
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("sums only the customer's transactions in the year", func(t *testing.T) {
		require.NoError(t, ledger.Append(ctx, newTcsTransaction(1, customerID, fy, 1, "400000")))
		require.NoError(t, ledger.Append(ctx, newTcsTransaction(2, customerID, fy, 2, "350000.50")))

		// Other customer and other financial year stay out of the sum
		require.NoError(t, ledger.Append(ctx, newTcsTransaction(3, uuid.New(), fy, 1, "900000")))
		priorFY := tax.FinancialYearOf(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, ledger.Append(ctx, newTcsTransaction(4, customerID, priorFY, 1, "800000")))

		total, err := ledger.CumulativeSaleAmount(ctx, customerID, fy)
		require.NoError(t, err)
		assert.Equal(t, "750000.5", total.String())
	})
}

func TestGormTcsLedger_Append(t *testing.T) {
	db := setupTcsLedgerTestDB(t)
	ledger := NewGormTcsLedger(db)
	ctx := context.Background()

	fy := tax.FinancialYearOf(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	t.Run("persists the full snapshot", func(t *testing.T) {
		customerID := uuid.New()
		txn := newTcsTransaction(1, customerID, fy, 1, "1050000")
		txn.CumulativeSaleAmount = decimal.RequireFromString("1050000")
		txn.TaxableAmount = decimal.RequireFromString("50000")
		txn.Rate = decimal.RequireFromString("0.1")
		txn.Amount = decimal.RequireFromString("50")
		txn.Type = tax.TcsWithPAN
		txn.PAN = "ABCDE1234F"

		require.NoError(t, ledger.Append(ctx, txn))

		var stored tax.TcsTransaction
		require.NoError(t, db.First(&stored, "id = ?", txn.ID).Error)
		assert.Equal(t, "1050000", stored.CumulativeSaleAmount.String())
		assert.Equal(t, "50000", stored.TaxableAmount.String())
		assert.Equal(t, "50", stored.Amount.String())
		assert.Equal(t, tax.TcsWithPAN, stored.Type)
		assert.Equal(t, "ABCDE1234F", stored.PAN)
	})

	t.Run("rejects a transaction without an id", func(t *testing.T) {
		txn := newTcsTransaction(2, uuid.New(), fy, 1, "1000")
		txn.ID = uuid.Nil

		err := ledger.Append(ctx, txn)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestGormTcsLedger_TransactionsForQuarter(t *testing.T) {
	db := setupTcsLedgerTestDB(t)
	ledger := NewGormTcsLedger(db)
	ctx := context.Background()

	customerID := uuid.New()
	fy := tax.FinancialYearOf(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	first := newTcsTransaction(1, customerID, fy, 2, "100000")
	second := newTcsTransaction(2, customerID, fy, 2, "200000")
	other := newTcsTransaction(3, customerID, fy, 3, "300000")
	require.NoError(t, ledger.Append(ctx, first))
	require.NoError(t, ledger.Append(ctx, second))
	require.NoError(t, ledger.Append(ctx, other))

	t.Run("returns the quarter's transactions in insertion order", func(t *testing.T) {
		txns, err := ledger.TransactionsForQuarter(ctx, fy, 2)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, first.ID, txns[0].ID)
		assert.Equal(t, second.ID, txns[1].ID)
	})

	t.Run("returns empty for a quarter without activity", func(t *testing.T) {
		txns, err := ledger.TransactionsForQuarter(ctx, fy, 4)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})
}
