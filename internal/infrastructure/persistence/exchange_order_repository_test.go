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

	"github.com/jewelerp/backend/internal/domain/exchange"
	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/shared/valueobject"
)

func setupExchangeTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&exchange.ExchangeOrder{}, &exchange.ExchangeItem{})
	require.NoError(t, err)

	return db
}

func newStoredOrder(t *testing.T, repo *GormExchangeOrderRepository, orderNumber string, customerID uuid.UUID) *exchange.ExchangeOrder {
	t.Helper()

	order, err := exchange.NewExchangeOrder(orderNumber, customerID, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = order.AddItem(exchange.ItemInput{
		GrossWeight:                  decimal.RequireFromString("10"),
		NetWeight:                    decimal.RequireFromString("9.5"),
		PurityPercent:                decimal.RequireFromString("91.6"),
		RatePerGram:                  decimal.RequireFromString("6000"),
		MakingChargeDeductionPercent: decimal.RequireFromString("8"),
		WastageDeductionPercent:      decimal.RequireFromString("4"),
	}, "Old gold bangle")
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), order))
	return order
}

func TestGormExchangeOrderRepository_SaveAndFind(t *testing.T) {
	db := setupExchangeTestDB(t)
	repo := NewGormExchangeOrderRepository(db)
	ctx := context.Background()

	customerID := uuid.New()

	t.Run("round-trips an order with items", func(t *testing.T) {
		order := newStoredOrder(t, repo, "EX-2025-0001", customerID)

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "EX-2025-0001", found.OrderNumber)
		assert.Equal(t, customerID, found.CustomerID)
		assert.Equal(t, exchange.OrderStatusPending, found.Status)
		assert.Equal(t, "45946.56", found.TotalCreditAmount.Amount().String())
		require.Len(t, found.Items, 1)
		assert.Equal(t, "8.702", found.Items[0].PureWeight.Grams().String())
		assert.Equal(t, "Old gold bangle", found.Items[0].Description)
	})

	t.Run("finds by order number", func(t *testing.T) {
		found, err := repo.FindByOrderNumber(ctx, "EX-2025-0001")
		require.NoError(t, err)
		assert.Equal(t, "EX-2025-0001", found.OrderNumber)
		assert.Len(t, found.Items, 1)
	})

	t.Run("returns not found for unknown order", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByOrderNumber(ctx, "EX-9999-0000")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormExchangeOrderRepository_SaveSyncsItems(t *testing.T) {
	db := setupExchangeTestDB(t)
	repo := NewGormExchangeOrderRepository(db)
	ctx := context.Background()

	order := newStoredOrder(t, repo, "EX-2025-0002", uuid.New())

	item, err := order.AddItem(exchange.ItemInput{
		GrossWeight:   decimal.RequireFromString("5"),
		NetWeight:     decimal.RequireFromString("5"),
		PurityPercent: decimal.RequireFromString("75"),
		RatePerGram:   decimal.RequireFromString("6000"),
	}, "Old ring")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)

	// Removing an item from the aggregate removes its row on the next save
	require.NoError(t, order.RemoveItem(item.ID))
	require.NoError(t, repo.Save(ctx, order))

	found, err = repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Old gold bangle", found.Items[0].Description)

	var itemCount int64
	require.NoError(t, db.Model(&exchange.ExchangeItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)
}

func TestGormExchangeOrderRepository_SaveWithLock(t *testing.T) {
	db := setupExchangeTestDB(t)
	repo := NewGormExchangeOrderRepository(db)
	ctx := context.Background()

	t.Run("persists completion and bumps the version", func(t *testing.T) {
		order := newStoredOrder(t, repo, "EX-2025-0003", uuid.New())
		savedVersion := order.Version

		_, err := order.Complete(valueobject.NewMoneyINR(decimal.RequireFromString("60000")))
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithLock(ctx, order))

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, exchange.OrderStatusCompleted, found.Status)
		assert.Equal(t, "60000", found.NewPurchaseAmount.Amount().String())
		assert.Equal(t, "14053.44", found.CashPayment.Amount().String())
		assert.Equal(t, savedVersion+1, found.Version)
		assert.NotNil(t, found.CompletedAt)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		order := newStoredOrder(t, repo, "EX-2025-0004", uuid.New())

		stale, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		require.NoError(t, order.Cancel("customer changed mind"))
		require.NoError(t, repo.SaveWithLock(ctx, order))

		_, err = stale.Complete(valueobject.NewMoneyINR(decimal.RequireFromString("60000")))
		require.NoError(t, err)
		err = repo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, exchange.OrderStatusCancelled, found.Status)
		assert.Equal(t, "customer changed mind", found.CancelReason)
	})

	t.Run("order never saved reports not found, not a conflict", func(t *testing.T) {
		order, err := exchange.NewExchangeOrder("EX-2025-9999", uuid.New(), time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		err = repo.SaveWithLock(ctx, order)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormExchangeOrderRepository_FindByCustomerAndStatus(t *testing.T) {
	db := setupExchangeTestDB(t)
	repo := NewGormExchangeOrderRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	first := newStoredOrder(t, repo, "EX-2025-0005", customerID)
	newStoredOrder(t, repo, "EX-2025-0006", customerID)
	newStoredOrder(t, repo, "EX-2025-0007", uuid.New())

	require.NoError(t, first.Cancel("damaged piece"))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	t.Run("filters by customer", func(t *testing.T) {
		orders, err := repo.FindByCustomer(ctx, customerID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, orders, 2)
		for _, order := range orders {
			assert.Equal(t, customerID, order.CustomerID)
			assert.NotEmpty(t, order.Items)
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		orders, err := repo.FindByStatus(ctx, exchange.OrderStatusCancelled, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, first.ID, orders[0].ID)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 1, OrderBy: "order_number", OrderDir: "asc"}
		orders, err := repo.FindByCustomer(ctx, customerID, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "EX-2025-0005", orders[0].OrderNumber)
	})
}

func TestGormExchangeOrderRepository_ExistsByOrderNumber(t *testing.T) {
	db := setupExchangeTestDB(t)
	repo := NewGormExchangeOrderRepository(db)
	ctx := context.Background()

	newStoredOrder(t, repo, "EX-2025-0008", uuid.New())

	exists, err := repo.ExistsByOrderNumber(ctx, "EX-2025-0008")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByOrderNumber(ctx, "EX-2025-9999")
	require.NoError(t, err)
	assert.False(t, exists)
}
