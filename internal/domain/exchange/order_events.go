package exchange

import (
	"github.com/google/uuid"

	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/shared/valueobject"
)

// Aggregate type constant
const AggregateTypeExchangeOrder = "ExchangeOrder"

// Event type constants
const (
	EventTypeExchangeOrderCreated   = "ExchangeOrderCreated"
	EventTypeExchangeOrderCompleted = "ExchangeOrderCompleted"
	EventTypeExchangeOrderCancelled = "ExchangeOrderCancelled"
)

// ExchangeOrderCreatedEvent is raised when a new exchange order is opened
type ExchangeOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewExchangeOrderCreatedEvent creates a new ExchangeOrderCreatedEvent
func NewExchangeOrderCreatedEvent(order *ExchangeOrder) *ExchangeOrderCreatedEvent {
	return &ExchangeOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExchangeOrderCreated, AggregateTypeExchangeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
	}
}

// EventType returns the event type name
func (e *ExchangeOrderCreatedEvent) EventType() string {
	return EventTypeExchangeOrderCreated
}

// ExchangeOrderCompletedEvent is raised when an order is completed and its
// credit applied. The billing side consumes it to offset a linked sale.
type ExchangeOrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID           uuid.UUID       `json:"order_id"`
	OrderNumber       string          `json:"order_number"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	LinkedSaleOrderID *uuid.UUID        `json:"linked_sale_order_id,omitempty"`
	TotalCreditAmount valueobject.Money `json:"total_credit_amount"`
	BalanceRefund     valueobject.Money `json:"balance_refund"`
	CashPayment       valueobject.Money `json:"cash_payment"`
}

// NewExchangeOrderCompletedEvent creates a new ExchangeOrderCompletedEvent
func NewExchangeOrderCompletedEvent(order *ExchangeOrder) *ExchangeOrderCompletedEvent {
	return &ExchangeOrderCompletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeExchangeOrderCompleted, AggregateTypeExchangeOrder, order.ID),
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		CustomerID:        order.CustomerID,
		LinkedSaleOrderID: order.LinkedSaleOrderID,
		TotalCreditAmount: order.TotalCreditAmount,
		BalanceRefund:     order.BalanceRefund,
		CashPayment:       order.CashPayment,
	}
}

// EventType returns the event type name
func (e *ExchangeOrderCompletedEvent) EventType() string {
	return EventTypeExchangeOrderCompleted
}

// ExchangeOrderCancelledEvent is raised when a pending order is cancelled
type ExchangeOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason"`
}

// NewExchangeOrderCancelledEvent creates a new ExchangeOrderCancelledEvent
func NewExchangeOrderCancelledEvent(order *ExchangeOrder) *ExchangeOrderCancelledEvent {
	return &ExchangeOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExchangeOrderCancelled, AggregateTypeExchangeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Reason:          order.CancelReason,
	}
}

// EventType returns the event type name
func (e *ExchangeOrderCancelledEvent) EventType() string {
	return EventTypeExchangeOrderCancelled
}
