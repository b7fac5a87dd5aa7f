package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jewelerp/backend/internal/domain/exchange"
	"github.com/jewelerp/backend/internal/domain/shared"
)

// GormExchangeOrderRepository implements ExchangeOrderRepository using GORM
type GormExchangeOrderRepository struct {
	db *gorm.DB
}

// NewGormExchangeOrderRepository creates a new GormExchangeOrderRepository
func NewGormExchangeOrderRepository(db *gorm.DB) *GormExchangeOrderRepository {
	return &GormExchangeOrderRepository{db: db}
}

// FindByID finds an exchange order by its ID, items included
func (r *GormExchangeOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*exchange.ExchangeOrder, error) {
	var order exchange.ExchangeOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an exchange order by order number
func (r *GormExchangeOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*exchange.ExchangeOrder, error) {
	var order exchange.ExchangeOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByCustomer finds exchange orders for a customer
func (r *GormExchangeOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]exchange.ExchangeOrder, error) {
	var orders []exchange.ExchangeOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&exchange.ExchangeOrder{}).
			Preload("Items").
			Where("customer_id = ?", customerID),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds exchange orders by status
func (r *GormExchangeOrderRepository) FindByStatus(ctx context.Context, status exchange.OrderStatus, filter shared.Filter) ([]exchange.ExchangeOrder, error) {
	var orders []exchange.ExchangeOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&exchange.ExchangeOrder{}).
			Preload("Items").
			Where("status = ?", status),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates an exchange order and its items
func (r *GormExchangeOrderRepository) Save(ctx context.Context, order *exchange.ExchangeOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		// Items removed from the aggregate must go away in the table too
		return r.syncItems(tx, order)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormExchangeOrderRepository) SaveWithLock(ctx context.Context, order *exchange.ExchangeOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Scan leaves the destination untouched on zero rows, so a missing
		// order has to be detected explicitly rather than via ErrRecordNotFound.
		var versions []int
		if err := tx.Model(&exchange.ExchangeOrder{}).
			Where("id = ?", order.ID).
			Limit(1).
			Pluck("version", &versions).Error; err != nil {
			return err
		}
		if len(versions) == 0 {
			return shared.ErrNotFound
		}

		currentVersion := versions[0]
		if currentVersion != order.Version {
			return shared.ErrConcurrencyConflict
		}

		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&exchange.ExchangeOrder{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"linked_sale_order_id":   order.LinkedSaleOrderID,
				"total_gross_weight":     order.TotalGrossWeight,
				"total_net_weight":       order.TotalNetWeight,
				"total_pure_weight":      order.TotalPureWeight,
				"total_market_value":     order.TotalMarketValue,
				"total_deduction_amount": order.TotalDeductionAmount,
				"total_credit_amount":    order.TotalCreditAmount,
				"new_purchase_amount":    order.NewPurchaseAmount,
				"balance_refund":         order.BalanceRefund,
				"cash_payment":           order.CashPayment,
				"status":                 order.Status,
				"completed_at":           order.CompletedAt,
				"cancelled_at":           order.CancelledAt,
				"cancel_reason":          order.CancelReason,
				"version":                order.Version,
				"updated_at":             order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return r.syncItems(tx, order)
	})
}

// ExistsByOrderNumber checks if an order number is already taken
func (r *GormExchangeOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&exchange.ExchangeOrder{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// syncItems replaces the order's item rows with the aggregate's current set
func (r *GormExchangeOrderRepository) syncItems(tx *gorm.DB, order *exchange.ExchangeOrder) error {
	keep := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		keep = append(keep, item.ID)
	}

	query := tx.Where("order_id = ?", order.ID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	if err := query.Delete(&exchange.ExchangeItem{}).Error; err != nil {
		return err
	}

	for i := range order.Items {
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies pagination and ordering from a shared.Filter
func (r *GormExchangeOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, ExchangeOrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
