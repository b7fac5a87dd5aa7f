package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jewelerp/backend/internal/domain/pricing"
)

func pricedLine(t *testing.T, netWeight, rate, discount, gstPct float64, qty int64) pricing.LineItemPricing {
	t.Helper()
	line, err := pricing.NewEngine().Price(pricing.PriceInput{
		NetMetalWeight:   decimal.NewFromFloat(netWeight),
		MetalRatePerGram: decimal.NewFromFloat(rate),
		MakingCharge:     pricing.MakingChargePolicy{Type: pricing.MakingChargePercentage, Value: decimal.NewFromInt(10)},
		WastagePercent:   decimal.NewFromInt(2),
		Discount:         decimal.NewFromFloat(discount),
		GSTPercent:       decimal.NewFromFloat(gstPct),
		Quantity:         qty,
	})
	require.NoError(t, err)
	return line
}

func TestAggregateInvoice(t *testing.T) {
	t.Run("sums line fields strictly", func(t *testing.T) {
		lines := []pricing.LineItemPricing{
			pricedLine(t, 9.5, 6000, 1000, 3, 1),
			pricedLine(t, 4.2, 6000, 0, 3, 2),
		}

		totals, err := AggregateInvoice(lines, true, RoundNone)
		require.NoError(t, err)

		expSubtotal := lines[0].ItemSubtotal.MustAdd(lines[1].ItemSubtotal)
		expTaxable := lines[0].TaxableAmount.MustAdd(lines[1].TaxableAmount)
		expGST := lines[0].GSTAmount.MustAdd(lines[1].GSTAmount)

		assert.True(t, totals.Subtotal.Equals(expSubtotal))
		assert.True(t, totals.TaxableAmount.Equals(expTaxable))
		assert.True(t, totals.TotalGST.Equals(expGST))
		assert.True(t, totals.GrandTotal.Equals(expTaxable.MustAdd(expGST)))
		assert.True(t, totals.RoundOff.IsZero())
	})

	t.Run("intra-state GST reconciles", func(t *testing.T) {
		lines := []pricing.LineItemPricing{pricedLine(t, 9.5, 6000, 1000, 3, 1)}

		totals, err := AggregateInvoice(lines, true, RoundNone)
		require.NoError(t, err)

		assert.True(t, totals.CGST.MustAdd(totals.SGST).Equals(totals.TotalGST))
		assert.True(t, totals.IGST.IsZero())
	})

	t.Run("inter-state GST is all IGST", func(t *testing.T) {
		lines := []pricing.LineItemPricing{pricedLine(t, 9.5, 6000, 1000, 3, 1)}

		totals, err := AggregateInvoice(lines, false, RoundNone)
		require.NoError(t, err)

		assert.True(t, totals.CGST.IsZero())
		assert.True(t, totals.SGST.IsZero())
		assert.True(t, totals.IGST.Equals(totals.TotalGST))
	})

	t.Run("rounding to rupee reconciles exactly", func(t *testing.T) {
		lines := []pricing.LineItemPricing{pricedLine(t, 9.5, 6000, 1000, 3, 1)}

		totals, err := AggregateInvoice(lines, true, RoundToRupee)
		require.NoError(t, err)

		assert.True(t, totals.GrandTotal.Equals(totals.GrandTotal.Round(0)), "grand total must be whole rupees")
		reconciled := totals.TaxableAmount.MustAdd(totals.TotalGST).MustAdd(totals.RoundOff)
		assert.True(t, totals.GrandTotal.Equals(reconciled))
		// round-off can never move the total by more than half a rupee
		assert.True(t, totals.RoundOff.Amount().Abs().LessThanOrEqual(decimal.NewFromFloat(0.5)))
	})

	t.Run("empty invoice aggregates to zero", func(t *testing.T) {
		totals, err := AggregateInvoice(nil, true, RoundToRupee)
		require.NoError(t, err)
		assert.True(t, totals.GrandTotal.IsZero())
		assert.True(t, totals.RoundOff.IsZero())
	})

	t.Run("rejects unknown rounding policy", func(t *testing.T) {
		_, err := AggregateInvoice(nil, true, RoundingPolicy("CEILING"))
		require.Error(t, err)
	})
}
