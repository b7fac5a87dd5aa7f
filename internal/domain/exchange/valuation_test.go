package exchange

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/shared/valueobject"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func validItemInput() ItemInput {
	return ItemInput{
		GrossWeight:                  dec("10"),
		NetWeight:                    dec("9.5"),
		PurityPercent:                dec("91.6"),
		RatePerGram:                  dec("6000"),
		MakingChargeDeductionPercent: dec("8"),
		WastageDeductionPercent:      dec("4"),
	}
}

func TestValuateItem_FullWorkedExample(t *testing.T) {
	// 9.5g of 22K at 6000/g with 12% total deductions
	v, err := ValuateItem(validItemInput())
	require.NoError(t, err)

	assert.Equal(t, "8.702", v.PureWeight.Grams().String())
	assert.Equal(t, "52212", v.MarketValue.Amount().String())
	assert.Equal(t, "12", v.TotalDeductionPercent.String())
	assert.Equal(t, "6265.44", v.DeductionAmount.Amount().String())
	assert.Equal(t, "45946.56", v.CreditAmount.Amount().String())
	assert.Equal(t, valueobject.INR, v.CreditAmount.Currency())
}

func TestValuateItem_NoDeductions(t *testing.T) {
	in := validItemInput()
	in.MakingChargeDeductionPercent = decimal.Zero
	in.WastageDeductionPercent = decimal.Zero

	v, err := ValuateItem(in)
	require.NoError(t, err)

	assert.True(t, v.DeductionAmount.IsZero())
	assert.True(t, v.CreditAmount.Equals(v.MarketValue))
}

func TestValuateItem_PureWeightRoundsToMilligram(t *testing.T) {
	in := validItemInput()
	in.NetWeight = dec("7.333")
	in.PurityPercent = dec("75")

	v, err := ValuateItem(in)
	require.NoError(t, err)

	// 7.333 * 0.75 = 5.49975 -> 5.500
	assert.Equal(t, "5.5", v.PureWeight.Grams().String())
	assert.Equal(t, "33000", v.MarketValue.Amount().String())
}

func TestValuateItem_ReconcilesMarketValue(t *testing.T) {
	v, err := ValuateItem(validItemInput())
	require.NoError(t, err)

	assert.True(t, v.DeductionAmount.MustAdd(v.CreditAmount).Equals(v.MarketValue),
		"deduction + credit must equal market value to the paise")
}

func TestValuateItem_FullPurity(t *testing.T) {
	in := validItemInput()
	in.PurityPercent = dec("100")

	v, err := ValuateItem(in)
	require.NoError(t, err)
	assert.True(t, v.PureWeight.Grams().Equal(in.NetWeight))
}

func TestValuateItem_ZeroGrossSkipsNetCheck(t *testing.T) {
	// gross unknown (not weighed with stones) is recorded as zero
	in := validItemInput()
	in.GrossWeight = decimal.Zero

	_, err := ValuateItem(in)
	assert.NoError(t, err)
}

func TestValuateItem_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ItemInput)
		wantErr error
	}{
		{
			name:    "negative net weight",
			mutate:  func(in *ItemInput) { in.NetWeight = dec("-1") },
			wantErr: ErrInvalidWeight,
		},
		{
			name:    "net exceeds gross",
			mutate:  func(in *ItemInput) { in.NetWeight = dec("10.5") },
			wantErr: ErrInvalidWeight,
		},
		{
			name:    "zero purity",
			mutate:  func(in *ItemInput) { in.PurityPercent = decimal.Zero },
			wantErr: ErrInvalidPurity,
		},
		{
			name:    "purity above 100",
			mutate:  func(in *ItemInput) { in.PurityPercent = dec("100.01") },
			wantErr: ErrInvalidPurity,
		},
		{
			name:    "zero rate",
			mutate:  func(in *ItemInput) { in.RatePerGram = decimal.Zero },
			wantErr: ErrRateUnavailable,
		},
		{
			name:    "negative rate",
			mutate:  func(in *ItemInput) { in.RatePerGram = dec("-6000") },
			wantErr: ErrRateUnavailable,
		},
		{
			name:    "negative making charge deduction",
			mutate:  func(in *ItemInput) { in.MakingChargeDeductionPercent = dec("-1") },
			wantErr: shared.ErrInvalidInput,
		},
		{
			name:    "negative wastage deduction",
			mutate:  func(in *ItemInput) { in.WastageDeductionPercent = dec("-1") },
			wantErr: shared.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validItemInput()
			tt.mutate(&in)

			_, err := ValuateItem(in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValuateItem_DeductionsOver100Percent(t *testing.T) {
	in := validItemInput()
	in.MakingChargeDeductionPercent = dec("60")
	in.WastageDeductionPercent = dec("45")

	_, err := ValuateItem(in)
	require.Error(t, err)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_DEDUCTION", de.Code)
}
