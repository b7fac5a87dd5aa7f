package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/shared/valueobject"
)

// WastageResult is the billed material loss for a crafted item:
// an extra slice of metal weight, priced at the metal rate.
type WastageResult struct {
	Weight valueobject.Weight // rounded to the milligram
	Amount valueobject.Money  // rounded to the paise
}

// CalculateWastage converts a wastage percentage into billed weight and
// amount. All inputs must be non-negative; both results are always >= 0.
func CalculateWastage(netMetalWeight, wastagePercent, metalRatePerGram decimal.Decimal) (WastageResult, error) {
	if netMetalWeight.IsNegative() || wastagePercent.IsNegative() || metalRatePerGram.IsNegative() {
		return WastageResult{}, shared.ErrInvalidInput
	}

	weight := valueobject.MustNewWeight(netMetalWeight).Percentage(wastagePercent).Round()
	amount := valueobject.NewMoneyINR(weight.Grams().Mul(metalRatePerGram)).Round(2)

	return WastageResult{Weight: weight, Amount: amount}, nil
}
