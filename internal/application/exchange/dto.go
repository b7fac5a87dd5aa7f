package exchange

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/exchange"
)

// ==================== Exchange Order DTOs ====================

// ExchangeItemRequest describes one old-metal item handed over for valuation
type ExchangeItemRequest struct {
	Description                  string          `json:"description" validate:"max=200"`
	MetalPurityCode              string          `json:"metal_purity_code" validate:"required,min=1,max=50"`
	GrossWeight                  decimal.Decimal `json:"gross_weight"`
	NetWeight                    decimal.Decimal `json:"net_weight" validate:"required"`
	PurityPercent                decimal.Decimal `json:"purity_percent" validate:"required"`
	MakingChargeDeductionPercent decimal.Decimal `json:"making_charge_deduction_percent"`
	WastageDeductionPercent      decimal.Decimal `json:"wastage_deduction_percent"`
}

// CreateExchangeOrderRequest represents a request to open an exchange order
type CreateExchangeOrderRequest struct {
	CustomerID    uuid.UUID             `json:"customer_id" validate:"required"`
	ValuationDate time.Time             `json:"valuation_date" validate:"required"`
	Items         []ExchangeItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CompleteExchangeOrderRequest settles and completes a pending order
type CompleteExchangeOrderRequest struct {
	NewPurchaseAmount decimal.Decimal `json:"new_purchase_amount"`
	SaleOrderID       *uuid.UUID      `json:"sale_order_id"`
}

// ExchangeItemResponse is one valued item in an order response
type ExchangeItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	Description     string          `json:"description"`
	GrossWeight     decimal.Decimal `json:"gross_weight"`
	NetWeight       decimal.Decimal `json:"net_weight"`
	PurityPercent   decimal.Decimal `json:"purity_percent"`
	PureWeight      decimal.Decimal `json:"pure_weight"`
	RatePerGram     decimal.Decimal `json:"rate_per_gram"`
	MarketValue     decimal.Decimal `json:"market_value"`
	DeductionAmount decimal.Decimal `json:"deduction_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
}

// ExchangeOrderResponse represents an exchange order in API responses
type ExchangeOrderResponse struct {
	ID                uuid.UUID              `json:"id"`
	OrderNumber       string                 `json:"order_number"`
	CustomerID        uuid.UUID              `json:"customer_id"`
	LinkedSaleOrderID *uuid.UUID             `json:"linked_sale_order_id,omitempty"`
	ValuationDate     time.Time              `json:"valuation_date"`
	Items             []ExchangeItemResponse `json:"items"`

	TotalGrossWeight     decimal.Decimal `json:"total_gross_weight"`
	TotalNetWeight       decimal.Decimal `json:"total_net_weight"`
	TotalPureWeight      decimal.Decimal `json:"total_pure_weight"`
	TotalMarketValue     decimal.Decimal `json:"total_market_value"`
	TotalDeductionAmount decimal.Decimal `json:"total_deduction_amount"`
	TotalCreditAmount    decimal.Decimal `json:"total_credit_amount"`

	NewPurchaseAmount decimal.Decimal `json:"new_purchase_amount"`
	BalanceRefund     decimal.Decimal `json:"balance_refund"`
	CashPayment       decimal.Decimal `json:"cash_payment"`

	Status       string     `json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Version      int        `json:"version"`
}

// ToExchangeOrderResponse converts an order aggregate to its response form
func ToExchangeOrderResponse(order *exchange.ExchangeOrder) ExchangeOrderResponse {
	items := make([]ExchangeItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ExchangeItemResponse{
			ID:              item.ID,
			Description:     item.Description,
			GrossWeight:     item.GrossWeight.Grams(),
			NetWeight:       item.NetWeight.Grams(),
			PurityPercent:   item.PurityPercent,
			PureWeight:      item.PureWeight.Grams(),
			RatePerGram:     item.RatePerGram.Amount(),
			MarketValue:     item.MarketValue.Amount(),
			DeductionAmount: item.DeductionAmount.Amount(),
			CreditAmount:    item.CreditAmount.Amount(),
		})
	}

	return ExchangeOrderResponse{
		ID:                   order.ID,
		OrderNumber:          order.OrderNumber,
		CustomerID:           order.CustomerID,
		LinkedSaleOrderID:    order.LinkedSaleOrderID,
		ValuationDate:        order.ValuationDate,
		Items:                items,
		TotalGrossWeight:     order.TotalGrossWeight.Grams(),
		TotalNetWeight:       order.TotalNetWeight.Grams(),
		TotalPureWeight:      order.TotalPureWeight.Grams(),
		TotalMarketValue:     order.TotalMarketValue.Amount(),
		TotalDeductionAmount: order.TotalDeductionAmount.Amount(),
		TotalCreditAmount:    order.TotalCreditAmount.Amount(),
		NewPurchaseAmount:    order.NewPurchaseAmount.Amount(),
		BalanceRefund:        order.BalanceRefund.Amount(),
		CashPayment:          order.CashPayment.Amount(),
		Status:               order.Status.String(),
		CompletedAt:          order.CompletedAt,
		CancelledAt:          order.CancelledAt,
		CancelReason:         order.CancelReason,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
		Version:              order.Version,
	}
}
