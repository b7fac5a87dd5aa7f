package exchange

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the status of an exchange order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// ErrInvalidStateTransition is returned for transitions out of a terminal state
var ErrInvalidStateTransition = shared.NewDomainError("INVALID_STATE_TRANSITION", "Exchange order is not pending")

// ExchangeItem is one valued old-metal item within an exchange order.
// Valuation fields are an immutable snapshot of the ItemValuation that
// priced it; rate changes after creation never alter them.
type ExchangeItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	Description string

	GrossWeight                  valueobject.Weight `gorm:"type:numeric(10,3)"`
	NetWeight                    valueobject.Weight `gorm:"type:numeric(10,3)"`
	PurityPercent                decimal.Decimal    `gorm:"type:numeric(6,2)"`
	PureWeight                   valueobject.Weight `gorm:"type:numeric(10,3)"`
	RatePerGram                  valueobject.Money  `gorm:"type:numeric(12,2)"`
	MarketValue                  valueobject.Money  `gorm:"type:numeric(14,2)"`
	MakingChargeDeductionPercent decimal.Decimal    `gorm:"type:numeric(6,2)"`
	WastageDeductionPercent      decimal.Decimal    `gorm:"type:numeric(6,2)"`
	TotalDeductionPercent        decimal.Decimal    `gorm:"type:numeric(6,2)"`
	DeductionAmount              valueobject.Money  `gorm:"type:numeric(14,2)"`
	CreditAmount                 valueobject.Money  `gorm:"type:numeric(14,2)"`

	CreatedAt time.Time
}

// Settlement is the cash resolution of an exchange against a new purchase.
// Exactly one of BalanceRefund and CashPayment is non-zero.
type Settlement struct {
	NewPurchaseAmount valueobject.Money
	BalanceRefund     valueobject.Money // credit exceeding the new purchase, paid out
	CashPayment       valueobject.Money // purchase exceeding the credit, collected
}

// ExchangeOrder is the aggregate root for a buyback/exchange transaction
type ExchangeOrder struct {
	shared.BaseAggregateRoot
	OrderNumber       string
	CustomerID        uuid.UUID `gorm:"type:uuid;index"`
	LinkedSaleOrderID *uuid.UUID
	ValuationDate     time.Time
	Items             []ExchangeItem `gorm:"foreignKey:OrderID"`

	TotalGrossWeight     valueobject.Weight `gorm:"type:numeric(12,3)"`
	TotalNetWeight       valueobject.Weight `gorm:"type:numeric(12,3)"`
	TotalPureWeight      valueobject.Weight `gorm:"type:numeric(12,3)"`
	TotalMarketValue     valueobject.Money  `gorm:"type:numeric(14,2)"`
	TotalDeductionAmount valueobject.Money  `gorm:"type:numeric(14,2)"`
	TotalCreditAmount    valueobject.Money  `gorm:"type:numeric(14,2)"`

	NewPurchaseAmount valueobject.Money `gorm:"type:numeric(14,2)"`
	BalanceRefund     valueobject.Money `gorm:"type:numeric(14,2)"`
	CashPayment       valueobject.Money `gorm:"type:numeric(14,2)"`

	Status       OrderStatus `gorm:"type:varchar(20)"`
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewExchangeOrder creates a new exchange order in PENDING status
func NewExchangeOrder(orderNumber string, customerID uuid.UUID, valuationDate time.Time) (*ExchangeOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if valuationDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Valuation date is required")
	}

	order := &ExchangeOrder{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		OrderNumber:          orderNumber,
		CustomerID:           customerID,
		ValuationDate:        valuationDate,
		Items:                make([]ExchangeItem, 0),
		TotalGrossWeight:     valueobject.ZeroWeight(),
		TotalNetWeight:       valueobject.ZeroWeight(),
		TotalPureWeight:      valueobject.ZeroWeight(),
		TotalMarketValue:     valueobject.ZeroINR(),
		TotalDeductionAmount: valueobject.ZeroINR(),
		TotalCreditAmount:    valueobject.ZeroINR(),
		NewPurchaseAmount:    valueobject.ZeroINR(),
		BalanceRefund:        valueobject.ZeroINR(),
		CashPayment:          valueobject.ZeroINR(),
		Status:               OrderStatusPending,
	}

	order.AddDomainEvent(NewExchangeOrderCreatedEvent(order))

	return order, nil
}

// AddItem values and adds an old-metal item to the order.
// Only allowed while the order is PENDING.
func (o *ExchangeOrder) AddItem(in ItemInput, description string) (*ExchangeItem, error) {
	if o.Status != OrderStatusPending {
		return nil, ErrInvalidStateTransition
	}

	valuation, err := ValuateItem(in)
	if err != nil {
		return nil, err
	}

	item := ExchangeItem{
		ID:          uuid.New(),
		OrderID:     o.ID,
		Description: description,

		GrossWeight:                  valuation.GrossWeight,
		NetWeight:                    valuation.NetWeight,
		PurityPercent:                valuation.PurityPercent,
		PureWeight:                   valuation.PureWeight,
		RatePerGram:                  valuation.RatePerGram,
		MarketValue:                  valuation.MarketValue,
		MakingChargeDeductionPercent: valuation.MakingChargeDeductionPercent,
		WastageDeductionPercent:      valuation.WastageDeductionPercent,
		TotalDeductionPercent:        valuation.TotalDeductionPercent,
		DeductionAmount:              valuation.DeductionAmount,
		CreditAmount:                 valuation.CreditAmount,

		CreatedAt: time.Now(),
	}

	o.Items = append(o.Items, item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return &o.Items[len(o.Items)-1], nil
}

// RemoveItem removes an item from a pending order
func (o *ExchangeOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != OrderStatusPending {
		return ErrInvalidStateTransition
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Exchange item not found")
}

// LinkSaleOrder associates the exchange credit with a sale order.
// An exchange order offsets at most one sale.
func (o *ExchangeOrder) LinkSaleOrder(saleOrderID uuid.UUID) error {
	if o.Status != OrderStatusPending {
		return ErrInvalidStateTransition
	}
	if saleOrderID == uuid.Nil {
		return shared.NewDomainError("INVALID_SALE_ORDER", "Sale order ID cannot be empty")
	}
	if o.LinkedSaleOrderID != nil {
		return shared.NewDomainError("ALREADY_LINKED", "Exchange order is already linked to a sale order")
	}

	o.LinkedSaleOrderID = &saleOrderID
	o.UpdatedAt = time.Now()
	return nil
}

// SettleAgainst resolves the order's total credit against a new purchase
// amount. At most one of BalanceRefund and CashPayment is non-zero.
func (o *ExchangeOrder) SettleAgainst(newPurchaseAmount valueobject.Money) (Settlement, error) {
	if newPurchaseAmount.IsNegative() {
		return Settlement{}, shared.NewDomainError("INVALID_AMOUNT", "New purchase amount cannot be negative")
	}

	diff, err := o.TotalCreditAmount.Subtract(newPurchaseAmount)
	if err != nil {
		return Settlement{}, shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
	}

	s := Settlement{
		NewPurchaseAmount: newPurchaseAmount,
		BalanceRefund:     valueobject.ZeroINR(),
		CashPayment:       valueobject.ZeroINR(),
	}
	if diff.IsPositive() {
		s.BalanceRefund = diff
	} else {
		s.CashPayment = diff.Negate()
	}
	return s, nil
}

// Complete settles the order against a new purchase and marks it COMPLETED.
// Terminal: the credit is applied and the order can never change again.
func (o *ExchangeOrder) Complete(newPurchaseAmount valueobject.Money) (Settlement, error) {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return Settlement{}, shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Cannot complete exchange order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return Settlement{}, shared.NewDomainError("NO_ITEMS", "Cannot complete exchange order without items")
	}

	settlement, err := o.SettleAgainst(newPurchaseAmount)
	if err != nil {
		return Settlement{}, err
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.NewPurchaseAmount = settlement.NewPurchaseAmount
	o.BalanceRefund = settlement.BalanceRefund
	o.CashPayment = settlement.CashPayment
	o.UpdatedAt = now

	o.AddDomainEvent(NewExchangeOrderCompletedEvent(o))

	return settlement, nil
}

// Cancel cancels a pending order. Terminal.
func (o *ExchangeOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Cannot cancel exchange order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewExchangeOrderCancelledEvent(o))

	return nil
}

// IsPending returns true if the order can still be modified
func (o *ExchangeOrder) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsTerminal returns true if the order is completed or cancelled
func (o *ExchangeOrder) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// ItemCount returns the number of items in the order
func (o *ExchangeOrder) ItemCount() int {
	return len(o.Items)
}

// recalculateTotals recalculates the order totals from item snapshots
func (o *ExchangeOrder) recalculateTotals() {
	gross, net, pure := valueobject.ZeroWeight(), valueobject.ZeroWeight(), valueobject.ZeroWeight()
	market, deduction, credit := valueobject.ZeroINR(), valueobject.ZeroINR(), valueobject.ZeroINR()

	for _, item := range o.Items {
		gross = gross.Add(item.GrossWeight)
		net = net.Add(item.NetWeight)
		pure = pure.Add(item.PureWeight)
		market = market.MustAdd(item.MarketValue)
		deduction = deduction.MustAdd(item.DeductionAmount)
		credit = credit.MustAdd(item.CreditAmount)
	}

	o.TotalGrossWeight = gross
	o.TotalNetWeight = net
	o.TotalPureWeight = pure
	o.TotalMarketValue = market
	o.TotalDeductionAmount = deduction
	o.TotalCreditAmount = credit
}
