// Package exchange orchestrates old-metal exchange orders: valuation against
// the rate history, settlement against a new purchase and order lifecycle.
package exchange

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jewelerp/backend/internal/domain/exchange"
	"github.com/jewelerp/backend/internal/domain/rates"
	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/shared/valueobject"
)

// OrderNumberSequence issues the next exchange order number
type OrderNumberSequence interface {
	Next(ctx context.Context) (string, error)
}

// ExchangeService handles exchange order business operations
type ExchangeService struct {
	orderRepo exchange.ExchangeOrderRepository
	resolver  *rates.Resolver
	sequence  OrderNumberSequence
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewExchangeService creates a new ExchangeService
func NewExchangeService(
	orderRepo exchange.ExchangeOrderRepository,
	resolver *rates.Resolver,
	sequence OrderNumberSequence,
	logger *zap.Logger,
) *ExchangeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExchangeService{
		orderRepo: orderRepo,
		resolver:  resolver,
		sequence:  sequence,
		validate:  validator.New(),
		logger:    logger,
	}
}

// CreateOrder opens a PENDING exchange order. Each item is valued against
// the metal rate as of the valuation date; the valuation is snapshotted on
// the item and never recomputed.
func (s *ExchangeService) CreateOrder(ctx context.Context, req CreateExchangeOrderRequest) (*ExchangeOrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	orderNumber, err := s.sequence.Next(ctx)
	if err != nil {
		return nil, err
	}

	order, err := exchange.NewExchangeOrder(orderNumber, req.CustomerID, req.ValuationDate)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		rate, err := s.resolver.MetalRate(ctx, item.MetalPurityCode, req.ValuationDate)
		if err != nil {
			return nil, err
		}

		_, err = order.AddItem(exchange.ItemInput{
			GrossWeight:                  item.GrossWeight,
			NetWeight:                    item.NetWeight,
			PurityPercent:                item.PurityPercent,
			RatePerGram:                  rate,
			MakingChargeDeductionPercent: item.MakingChargeDeductionPercent,
			WastageDeductionPercent:      item.WastageDeductionPercent,
		}, item.Description)
		if err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("exchange order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("customer_id", order.CustomerID.String()),
		zap.Int("item_count", order.ItemCount()),
		zap.String("total_credit", order.TotalCreditAmount.String()))

	response := ToExchangeOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an exchange order by ID
func (s *ExchangeService) GetByID(ctx context.Context, orderID uuid.UUID) (*ExchangeOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToExchangeOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves an exchange order by order number
func (s *ExchangeService) GetByOrderNumber(ctx context.Context, orderNumber string) (*ExchangeOrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToExchangeOrderResponse(order)
	return &response, nil
}

// ListByCustomer retrieves a customer's exchange orders
func (s *ExchangeService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]ExchangeOrderResponse, error) {
	orders, err := s.orderRepo.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ExchangeOrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToExchangeOrderResponse(&orders[i]))
	}
	return responses, nil
}

// CompleteOrder settles a pending order against a new purchase and marks it
// COMPLETED, optionally linking the sale order the credit offsets.
func (s *ExchangeService) CompleteOrder(ctx context.Context, orderID uuid.UUID, req CompleteExchangeOrderRequest) (*ExchangeOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if req.SaleOrderID != nil {
		if err := order.LinkSaleOrder(*req.SaleOrderID); err != nil {
			return nil, err
		}
	}

	settlement, err := order.Complete(valueobject.NewMoneyINR(req.NewPurchaseAmount))
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("exchange order completed",
		zap.String("order_number", order.OrderNumber),
		zap.String("credit_applied", order.TotalCreditAmount.String()),
		zap.String("balance_refund", settlement.BalanceRefund.String()),
		zap.String("cash_payment", settlement.CashPayment.String()))

	response := ToExchangeOrderResponse(order)
	return &response, nil
}

// CancelOrder cancels a pending order
func (s *ExchangeService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (*ExchangeOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(reason); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("exchange order cancelled",
		zap.String("order_number", order.OrderNumber),
		zap.String("reason", reason))

	response := ToExchangeOrderResponse(order)
	return &response, nil
}
