// Package billing composes rate resolution, line pricing, GST apportionment
// and TCS into complete invoice computations.
package billing

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jewelerp/backend/internal/domain/pricing"
	"github.com/jewelerp/backend/internal/domain/rates"
	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/tax"
)

// InvoiceNumberSequence issues the next invoice number. Numbers are opaque
// to this service; format and gap policy belong to the implementation.
type InvoiceNumberSequence interface {
	Next(ctx context.Context) (string, error)
}

// EInvoiceRegistrar registers an invoice with the e-invoice portal and
// returns its identifiers. The IRN and QR payload are embedded untouched.
type EInvoiceRegistrar interface {
	Register(ctx context.Context, inv *InvoiceComputation) (EInvoiceDetails, error)
}

// StockChecker answers whether the requested quantity of a SKU is on hand
type StockChecker interface {
	Available(ctx context.Context, sku string, quantity int64) (bool, error)
}

// InvoiceService computes invoices: per-line rate resolution and pricing,
// invoice-level GST apportionment and rounding, then TCS against the
// customer's financial-year ledger.
type InvoiceService struct {
	resolver  *rates.Resolver
	pricer    *pricing.Engine
	tcsEngine *tax.TcsEngine
	sequence  InvoiceNumberSequence
	stock     StockChecker
	registrar EInvoiceRegistrar // optional, nil skips e-invoice registration
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	resolver *rates.Resolver,
	tcsEngine *tax.TcsEngine,
	sequence InvoiceNumberSequence,
	stock StockChecker,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		resolver:  resolver,
		pricer:    pricing.NewEngine(),
		tcsEngine: tcsEngine,
		sequence:  sequence,
		stock:     stock,
		validate:  validator.New(),
		logger:    logger,
	}
}

// SetEInvoiceRegistrar enables e-invoice registration for computed invoices
func (s *InvoiceService) SetEInvoiceRegistrar(registrar EInvoiceRegistrar) {
	s.registrar = registrar
}

// PriceLine prices a single line as of the given time without touching the
// TCS ledger or stock. Used for quotations.
func (s *InvoiceService) PriceLine(ctx context.Context, req PriceLineRequest) (*InvoiceLineResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	metalRate, priced, err := s.priceOne(ctx, req.Line, asOf)
	if err != nil {
		return nil, err
	}

	resp := toLineResponse(req.Line, metalRate, priced)
	return &resp, nil
}

// CreateInvoice computes a complete invoice. Lines are priced against rates
// as of the invoice date, totals aggregated and GST split by place of
// supply, then TCS is evaluated and appended to the customer's ledger.
// The returned computation is an immutable snapshot.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceComputation, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	rounding := tax.RoundingPolicy(req.Rounding)
	if req.Rounding == "" {
		rounding = tax.RoundToRupee
	}
	if !rounding.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROUNDING", "Unknown rounding policy")
	}

	// Stock is verified before any pricing commits
	for _, line := range req.Lines {
		ok, err := s.stock.Available(ctx, line.SKU, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, shared.ErrInsufficientStock
		}
	}

	pricedLines := make([]pricing.LineItemPricing, 0, len(req.Lines))
	lineResponses := make([]InvoiceLineResponse, 0, len(req.Lines))
	for _, line := range req.Lines {
		metalRate, priced, err := s.priceOne(ctx, line, req.InvoiceDate)
		if err != nil {
			s.logger.Warn("invoice line pricing failed",
				zap.String("sku", line.SKU),
				zap.Error(err))
			return nil, err
		}
		pricedLines = append(pricedLines, priced)
		lineResponses = append(lineResponses, toLineResponse(line, metalRate, priced))
	}

	totals, err := tax.AggregateInvoice(pricedLines, req.IntraState, rounding)
	if err != nil {
		return nil, err
	}

	invoiceNumber, err := s.sequence.Next(ctx)
	if err != nil {
		return nil, err
	}

	inv := &InvoiceComputation{
		InvoiceNumber: invoiceNumber,
		CustomerID:    req.CustomerID,
		InvoiceDate:   req.InvoiceDate,
		IntraState:    req.IntraState,
		Lines:         lineResponses,
		Subtotal:      totals.Subtotal.Amount(),
		Discount:      totals.Discount.Amount(),
		TaxableAmount: totals.TaxableAmount.Amount(),
		CGST:          totals.CGST.Amount(),
		SGST:          totals.SGST.Amount(),
		IGST:          totals.IGST.Amount(),
		TotalGST:      totals.TotalGST.Amount(),
		RoundOff:      totals.RoundOff.Amount(),
		GrandTotal:    totals.GrandTotal.Amount(),
		AmountPayable: totals.GrandTotal.Amount(),
	}

	tcsResult, err := s.tcsEngine.Process(ctx, tax.TcsInput{
		CustomerID:      req.CustomerID,
		SaleAmount:      totals.GrandTotal.Amount(),
		TransactionDate: req.InvoiceDate,
		PAN:             req.PAN,
		KYCVerified:     req.KYCVerified,
		Exempted:        req.TcsExempted,
	})
	if err != nil {
		return nil, err
	}
	inv.Tcs = toTcsResponse(tcsResult)
	inv.AmountPayable = inv.GrandTotal.Add(tcsResult.Amount)

	if s.registrar != nil {
		details, err := s.registrar.Register(ctx, inv)
		if err != nil {
			return nil, err
		}
		inv.EInvoice = &details
	}

	s.logger.Info("invoice computed",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("customer_id", req.CustomerID.String()),
		zap.Int("line_count", len(inv.Lines)),
		zap.String("grand_total", inv.GrandTotal.String()),
		zap.Bool("tcs_applicable", inv.Tcs.IsApplicable))

	return inv, nil
}

// priceOne resolves rates for a single line and prices it
func (s *InvoiceService) priceOne(ctx context.Context, line InvoiceLineRequest, asOf time.Time) (decimal.Decimal, pricing.LineItemPricing, error) {
	metalRate, err := s.resolver.MetalRate(ctx, line.MetalPurityCode, asOf)
	if err != nil {
		return decimal.Zero, pricing.LineItemPricing{}, err
	}

	stoneAmount := line.StoneAmount
	for _, stone := range line.Stones {
		perCarat, err := s.resolver.StoneRate(ctx, rates.StoneDescriptor{
			StoneCode: stone.StoneCode,
			Carat:     decimal.NewNullDecimal(stone.CaratWeight),
			Cut:       stone.Cut,
			Color:     stone.Color,
			Clarity:   stone.Clarity,
			Grade:     stone.Grade,
		}, asOf)
		if err != nil {
			return decimal.Zero, pricing.LineItemPricing{}, err
		}
		stoneAmount = stoneAmount.Add(stone.CaratWeight.Mul(perCarat).Round(2))
	}

	policy, err := pricing.NewMakingChargePolicy(pricing.MakingChargeType(line.MakingChargeType), line.MakingChargeValue)
	if err != nil {
		return decimal.Zero, pricing.LineItemPricing{}, err
	}

	priced, err := s.pricer.Price(pricing.PriceInput{
		GrossWeight:      line.GrossWeight,
		NetMetalWeight:   line.NetMetalWeight,
		MetalRatePerGram: metalRate,
		MakingCharge:     policy,
		WastagePercent:   line.WastagePercent,
		StoneAmount:      stoneAmount,
		Discount:         line.Discount,
		GSTPercent:       line.GSTPercent,
		Quantity:         line.Quantity,
		HUID:             line.HUID,
		Hallmarked:       line.Hallmarked,
	})
	if err != nil {
		return decimal.Zero, pricing.LineItemPricing{}, err
	}

	return metalRate, priced, nil
}
