package valueobject

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightScale is the number of decimal places weights are carried to.
// Jewellery scales report grams to the milligram.
const WeightScale int32 = 3

// Weight is a value object representing a metal or stone weight in grams.
// It is immutable - all operations return new Weight instances
type Weight struct {
	grams decimal.Decimal
}

// NewWeight creates a new Weight from a decimal gram value
func NewWeight(grams decimal.Decimal) (Weight, error) {
	if grams.IsNegative() {
		return Weight{}, errors.New("weight cannot be negative")
	}
	return Weight{grams: grams}, nil
}

// NewWeightFromFloat creates Weight from a float64 gram value
func NewWeightFromFloat(grams float64) (Weight, error) {
	return NewWeight(decimal.NewFromFloat(grams))
}

// NewWeightFromString creates Weight from a string representation
func NewWeightFromString(grams string) (Weight, error) {
	d, err := decimal.NewFromString(grams)
	if err != nil {
		return Weight{}, fmt.Errorf("invalid weight string: %w", err)
	}
	return NewWeight(d)
}

// MustNewWeight creates a Weight and panics on error
func MustNewWeight(grams decimal.Decimal) Weight {
	w, err := NewWeight(grams)
	if err != nil {
		panic(err)
	}
	return w
}

// ZeroWeight returns a zero weight
func ZeroWeight() Weight {
	return Weight{grams: decimal.Zero}
}

// Grams returns the decimal gram value
func (w Weight) Grams() decimal.Decimal {
	return w.grams
}

// IsZero returns true if the weight is zero
func (w Weight) IsZero() bool {
	return w.grams.IsZero()
}

// Add returns a new Weight with the sum of both weights
func (w Weight) Add(other Weight) Weight {
	return Weight{grams: w.grams.Add(other.grams)}
}

// Multiply returns a new Weight multiplied by the given factor
func (w Weight) Multiply(factor decimal.Decimal) Weight {
	return Weight{grams: w.grams.Mul(factor)}
}

// Percentage returns the given percentage of this weight
func (w Weight) Percentage(percent decimal.Decimal) Weight {
	return Weight{grams: w.grams.Mul(percent).Div(decimal.NewFromInt(100))}
}

// Round returns a new Weight rounded to WeightScale decimal places
func (w Weight) Round() Weight {
	return Weight{grams: w.grams.Round(WeightScale)}
}

// LessThanOrEqual returns true if this weight is less than or equal to the other
func (w Weight) LessThanOrEqual(other Weight) bool {
	return w.grams.LessThanOrEqual(other.grams)
}

// Equals returns true if both weights are equal
func (w Weight) Equals(other Weight) bool {
	return w.grams.Equal(other.grams)
}

// String returns the weight formatted in grams
func (w Weight) String() string {
	return w.grams.StringFixed(WeightScale) + "g"
}

// Value implements driver.Valuer for database storage
func (w Weight) Value() (driver.Value, error) {
	return w.grams.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (w *Weight) Scan(value any) error {
	if value == nil {
		w.grams = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case float64:
		strVal = decimal.NewFromFloat(v).String()
	case int64:
		strVal = decimal.NewFromInt(v).String()
	default:
		return fmt.Errorf("cannot scan %T into Weight", value)
	}

	grams, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	w.grams = grams
	return nil
}
