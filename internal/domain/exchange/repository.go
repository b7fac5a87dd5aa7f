package exchange

import (
	"context"

	"github.com/google/uuid"

	"github.com/jewelerp/backend/internal/domain/shared"
)

// ExchangeOrderRepository defines the interface for exchange order persistence
type ExchangeOrderRepository interface {
	// FindByID finds an exchange order by ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*ExchangeOrder, error)

	// FindByOrderNumber finds an exchange order by order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*ExchangeOrder, error)

	// FindByCustomer finds exchange orders for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]ExchangeOrder, error)

	// FindByStatus finds exchange orders by status
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]ExchangeOrder, error)

	// Save creates or updates an exchange order and its items
	Save(ctx context.Context, order *ExchangeOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *ExchangeOrder) error

	// ExistsByOrderNumber checks if an order number is already taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)
}
