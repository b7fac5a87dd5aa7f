package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/shared"
)

// MakingChargeType represents how a jewellery item's making charge is computed
type MakingChargeType string

const (
	MakingChargePerGram    MakingChargeType = "PER_GRAM"   // value is rupees per gram of net metal weight
	MakingChargePercentage MakingChargeType = "PERCENTAGE" // value is a percentage of the metal amount
	MakingChargeFixed      MakingChargeType = "FIXED"      // value is a flat per-unit charge
)

// IsValid checks if the type is a known MakingChargeType
func (t MakingChargeType) IsValid() bool {
	switch t {
	case MakingChargePerGram, MakingChargePercentage, MakingChargeFixed:
		return true
	}
	return false
}

// String returns the string representation of MakingChargeType
func (t MakingChargeType) String() string {
	return string(t)
}

// Making charge errors
var (
	ErrInvalidChargeValue = shared.NewDomainError("INVALID_CHARGE_VALUE", "Making charge value cannot be negative")
	ErrInvalidChargeType  = shared.NewDomainError("INVALID_CHARGE_TYPE", "Unknown making charge type")
)

// MakingChargePolicy is attached to a jewellery item definition and describes
// how its fabrication fee is derived. Value semantics depend on Type.
type MakingChargePolicy struct {
	Type  MakingChargeType `gorm:"type:varchar(20)"`
	Value decimal.Decimal  `gorm:"type:numeric(12,2)"`
}

// NewMakingChargePolicy creates a validated making charge policy
func NewMakingChargePolicy(chargeType MakingChargeType, value decimal.Decimal) (MakingChargePolicy, error) {
	if !chargeType.IsValid() {
		return MakingChargePolicy{}, ErrInvalidChargeType
	}
	if value.IsNegative() {
		return MakingChargePolicy{}, ErrInvalidChargeValue
	}
	return MakingChargePolicy{Type: chargeType, Value: value}, nil
}

// Charge computes the per-unit making charge for the given metal amount and
// net metal weight, rounded to 2 decimal places.
func (p MakingChargePolicy) Charge(metalAmount, netMetalWeight decimal.Decimal) (decimal.Decimal, error) {
	if p.Value.IsNegative() {
		return decimal.Zero, ErrInvalidChargeValue
	}
	if metalAmount.IsNegative() || netMetalWeight.IsNegative() {
		return decimal.Zero, shared.ErrInvalidInput
	}

	switch p.Type {
	case MakingChargePerGram:
		return netMetalWeight.Mul(p.Value).Round(2), nil
	case MakingChargePercentage:
		return metalAmount.Mul(p.Value).Div(decimal.NewFromInt(100)).Round(2), nil
	case MakingChargeFixed:
		return p.Value.Round(2), nil
	default:
		return decimal.Zero, ErrInvalidChargeType
	}
}
