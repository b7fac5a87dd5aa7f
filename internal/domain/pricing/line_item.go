// Package pricing turns raw weights, resolved metal/stone rates and
// making-charge policies into fully priced sale lines. All arithmetic is
// decimal fixed-point; a priced line is an immutable snapshot that later
// invoice aggregation sums but never recomputes.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/shared/valueobject"
)

// ErrRateUnavailable is returned when pricing is attempted with a
// non-positive metal rate. Pricing must never proceed on a missing or zero
// rate; that silently undercharges.
var ErrRateUnavailable = shared.NewDomainError("RATE_UNAVAILABLE", "Metal rate must be positive to price an item")

// PriceInput is the jewellery item snapshot a sale line is priced from
type PriceInput struct {
	GrossWeight      decimal.Decimal // grams; zero means not supplied
	NetMetalWeight   decimal.Decimal // grams of billable metal
	MetalRatePerGram decimal.Decimal
	MakingCharge     MakingChargePolicy
	WastagePercent   decimal.Decimal
	StoneAmount      decimal.Decimal // already-valued stones on the item, per unit
	Discount         decimal.Decimal // per extended unit, applied once before scaling
	GSTPercent       decimal.Decimal
	Quantity         int64

	// Hallmark snapshot, carried through untouched
	HUID       string
	Hallmarked bool
}

// LineItemPricing is the priced vector for one sale line. Every additive
// field is the per-unit figure scaled by Quantity.
type LineItemPricing struct {
	MetalAmount   valueobject.Money
	MakingCharges valueobject.Money
	WastageWeight valueobject.Weight
	WastageAmount valueobject.Money
	StoneAmount   valueobject.Money
	ItemSubtotal  valueobject.Money
	Discount      valueobject.Money
	TaxableAmount valueobject.Money
	GSTPercentage decimal.Decimal
	GSTAmount     valueobject.Money
	TotalAmount   valueobject.Money
	Quantity      int64

	HUID       string
	Hallmarked bool
}

// Engine prices sale lines. It is stateless; identical inputs always yield
// identical output, so callers may retry freely.
type Engine struct{}

// NewEngine creates a line item pricing engine
func NewEngine() *Engine {
	return &Engine{}
}

// Price computes the full pricing vector for one sale line.
//
// Per-unit: metalAmount = netWeight * rate; making charges per policy;
// wastage per percentage; itemSubtotal = metal + making + wastage + stones;
// taxableAmount = max(0, itemSubtotal - discount); GST on the taxable amount;
// totalAmount = taxable + GST. Every additive field is then scaled by
// quantity as the final step - discount and GST percentage are not
// re-applied per unit.
func (e *Engine) Price(in PriceInput) (LineItemPricing, error) {
	if in.MetalRatePerGram.LessThanOrEqual(decimal.Zero) {
		return LineItemPricing{}, ErrRateUnavailable
	}
	if in.Quantity < 1 {
		return LineItemPricing{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if in.NetMetalWeight.IsNegative() || in.GrossWeight.IsNegative() {
		return LineItemPricing{}, shared.NewDomainError("INVALID_WEIGHT", "Weights cannot be negative")
	}
	if in.GrossWeight.IsPositive() && in.NetMetalWeight.GreaterThan(in.GrossWeight) {
		return LineItemPricing{}, shared.NewDomainError("INVALID_WEIGHT", "Net metal weight cannot exceed gross weight")
	}
	if in.StoneAmount.IsNegative() || in.Discount.IsNegative() || in.GSTPercent.IsNegative() || in.WastagePercent.IsNegative() {
		return LineItemPricing{}, shared.ErrInvalidInput
	}

	metalAmount := valueobject.NewMoneyINR(in.NetMetalWeight.Mul(in.MetalRatePerGram)).Round(2)

	chargeValue, err := in.MakingCharge.Charge(metalAmount.Amount(), in.NetMetalWeight)
	if err != nil {
		return LineItemPricing{}, err
	}
	makingCharges := valueobject.NewMoneyINR(chargeValue)

	wastage, err := CalculateWastage(in.NetMetalWeight, in.WastagePercent, in.MetalRatePerGram)
	if err != nil {
		return LineItemPricing{}, err
	}

	stoneAmount := valueobject.NewMoneyINR(in.StoneAmount).Round(2)
	itemSubtotal := metalAmount.MustAdd(makingCharges).MustAdd(wastage.Amount).MustAdd(stoneAmount)

	discount := valueobject.NewMoneyINR(in.Discount).Round(2)
	taxableAmount := itemSubtotal.MustSubtract(discount)
	if taxableAmount.IsNegative() {
		// a discount cannot create a negative tax base
		taxableAmount = valueobject.ZeroINR()
	}

	gstAmount := taxableAmount.CalculatePercentage(in.GSTPercent).Round(2)
	totalAmount := taxableAmount.MustAdd(gstAmount)

	qty := decimal.NewFromInt(in.Quantity)

	return LineItemPricing{
		MetalAmount:   metalAmount.MultiplyByInt(in.Quantity),
		MakingCharges: makingCharges.MultiplyByInt(in.Quantity),
		WastageWeight: wastage.Weight.Multiply(qty),
		WastageAmount: wastage.Amount.MultiplyByInt(in.Quantity),
		StoneAmount:   stoneAmount.MultiplyByInt(in.Quantity),
		ItemSubtotal:  itemSubtotal.MultiplyByInt(in.Quantity),
		Discount:      discount.MultiplyByInt(in.Quantity),
		TaxableAmount: taxableAmount.MultiplyByInt(in.Quantity),
		GSTPercentage: in.GSTPercent,
		GSTAmount:     gstAmount.MultiplyByInt(in.Quantity),
		TotalAmount:   totalAmount.MultiplyByInt(in.Quantity),
		Quantity:      in.Quantity,
		HUID:          in.HUID,
		Hallmarked:    in.Hallmarked,
	}, nil
}
