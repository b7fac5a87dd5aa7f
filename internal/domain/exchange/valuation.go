// Package exchange values a customer's old metal and stones for buyback or
// exchange against a new purchase. Valuation is pure arithmetic over the
// caller-supplied weights and rates; the order aggregate adds the
// PENDING -> COMPLETED/CANCELLED lifecycle around it.
package exchange

import (
	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/shared/valueobject"
)

// Valuation errors
var (
	ErrRateUnavailable = shared.NewDomainError("RATE_UNAVAILABLE", "Metal rate must be positive to value an exchange item")
	ErrInvalidWeight   = shared.NewDomainError("INVALID_WEIGHT", "Invalid exchange item weights")
	ErrInvalidPurity   = shared.NewDomainError("INVALID_PURITY", "Purity percentage must be between 0 and 100")
)

// ItemInput describes one old-metal item handed over for valuation
type ItemInput struct {
	GrossWeight                  decimal.Decimal // grams, as weighed with stones/dirt
	NetWeight                    decimal.Decimal // grams of metal after removing stones
	PurityPercent                decimal.Decimal // tested fineness, e.g. 91.6 for 22K
	RatePerGram                  decimal.Decimal // current market rate for pure metal
	MakingChargeDeductionPercent decimal.Decimal
	WastageDeductionPercent      decimal.Decimal
}

// ItemValuation is the computed value of one exchange item.
// CreditAmount = MarketValue - DeductionAmount.
type ItemValuation struct {
	GrossWeight                  valueobject.Weight
	NetWeight                    valueobject.Weight
	PurityPercent                decimal.Decimal
	PureWeight                   valueobject.Weight // NetWeight * PurityPercent / 100
	RatePerGram                  valueobject.Money
	MarketValue                  valueobject.Money // PureWeight * RatePerGram
	MakingChargeDeductionPercent decimal.Decimal
	WastageDeductionPercent      decimal.Decimal
	TotalDeductionPercent        decimal.Decimal
	DeductionAmount              valueobject.Money
	CreditAmount                 valueobject.Money
}

// ValuateItem computes the market value and net credit for one item.
// Pure weight rounds to the milligram, money figures to the paise.
func ValuateItem(in ItemInput) (ItemValuation, error) {
	if in.NetWeight.IsNegative() || in.GrossWeight.IsNegative() {
		return ItemValuation{}, ErrInvalidWeight
	}
	if in.GrossWeight.IsPositive() && in.NetWeight.GreaterThan(in.GrossWeight) {
		return ItemValuation{}, ErrInvalidWeight
	}
	if in.PurityPercent.LessThanOrEqual(decimal.Zero) || in.PurityPercent.GreaterThan(decimal.NewFromInt(100)) {
		return ItemValuation{}, ErrInvalidPurity
	}
	if in.RatePerGram.LessThanOrEqual(decimal.Zero) {
		return ItemValuation{}, ErrRateUnavailable
	}
	if in.MakingChargeDeductionPercent.IsNegative() || in.WastageDeductionPercent.IsNegative() {
		return ItemValuation{}, shared.ErrInvalidInput
	}
	totalDeduction := in.MakingChargeDeductionPercent.Add(in.WastageDeductionPercent)
	if totalDeduction.GreaterThan(decimal.NewFromInt(100)) {
		return ItemValuation{}, shared.NewDomainError("INVALID_DEDUCTION", "Total deduction cannot exceed 100 percent")
	}

	grossWeight := valueobject.MustNewWeight(in.GrossWeight)
	netWeight := valueobject.MustNewWeight(in.NetWeight)

	pureWeight := netWeight.Percentage(in.PurityPercent).Round()
	marketValue := valueobject.NewMoneyINR(pureWeight.Grams().Mul(in.RatePerGram)).Round(2)
	deductionAmount := marketValue.CalculatePercentage(totalDeduction).Round(2)

	return ItemValuation{
		GrossWeight:                  grossWeight,
		NetWeight:                    netWeight,
		PurityPercent:                in.PurityPercent,
		PureWeight:                   pureWeight,
		RatePerGram:                  valueobject.NewMoneyINR(in.RatePerGram),
		MarketValue:                  marketValue,
		MakingChargeDeductionPercent: in.MakingChargeDeductionPercent,
		WastageDeductionPercent:      in.WastageDeductionPercent,
		TotalDeductionPercent:        totalDeduction,
		DeductionAmount:              deductionAmount,
		CreditAmount:                 marketValue.MustSubtract(deductionAmount),
	}, nil
}
