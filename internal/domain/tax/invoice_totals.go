package tax

import (
	"github.com/jewelerp/backend/internal/domain/pricing"
	"github.com/jewelerp/backend/internal/domain/shared"
	"github.com/jewelerp/backend/internal/domain/shared/valueobject"
)

// RoundingPolicy controls how an invoice grand total is rounded
type RoundingPolicy string

const (
	// RoundToRupee rounds the grand total to the nearest rupee, carrying
	// the residual as RoundOff so the totals reconcile exactly
	RoundToRupee RoundingPolicy = "ROUND_TO_RUPEE"
	// RoundNone leaves the grand total at paise precision
	RoundNone RoundingPolicy = "ROUND_NONE"
)

// IsValid checks if the policy is a known RoundingPolicy
func (p RoundingPolicy) IsValid() bool {
	switch p {
	case RoundToRupee, RoundNone:
		return true
	}
	return false
}

// InvoiceTotals is the aggregated monetary summary of an invoice. It is
// computed only from immutable priced line snapshots.
// GrandTotal = TaxableAmount + TotalGST + RoundOff, exactly.
type InvoiceTotals struct {
	Subtotal      valueobject.Money
	Discount      valueobject.Money
	TaxableAmount valueobject.Money
	CGST          valueobject.Money
	SGST          valueobject.Money
	IGST          valueobject.Money
	TotalGST      valueobject.Money
	RoundOff      valueobject.Money
	GrandTotal    valueobject.Money
}

// AggregateInvoice sums priced line items into invoice totals, apportions
// the summed GST by place of supply and applies the rounding policy.
func AggregateInvoice(lines []pricing.LineItemPricing, intraState bool, rounding RoundingPolicy) (InvoiceTotals, error) {
	if !rounding.IsValid() {
		return InvoiceTotals{}, shared.NewDomainError("INVALID_ROUNDING_POLICY", "Unknown invoice rounding policy")
	}

	totals := InvoiceTotals{
		Subtotal:      valueobject.ZeroINR(),
		Discount:      valueobject.ZeroINR(),
		TaxableAmount: valueobject.ZeroINR(),
		TotalGST:      valueobject.ZeroINR(),
	}

	for _, line := range lines {
		totals.Subtotal = totals.Subtotal.MustAdd(line.ItemSubtotal)
		totals.Discount = totals.Discount.MustAdd(line.Discount)
		totals.TaxableAmount = totals.TaxableAmount.MustAdd(line.TaxableAmount)
		totals.TotalGST = totals.TotalGST.MustAdd(line.GSTAmount)
	}

	breakup := Apportion(totals.TotalGST.Amount(), intraState)
	totals.CGST = valueobject.NewMoneyINR(breakup.CGST)
	totals.SGST = valueobject.NewMoneyINR(breakup.SGST)
	totals.IGST = valueobject.NewMoneyINR(breakup.IGST)

	exact := totals.TaxableAmount.MustAdd(totals.TotalGST)
	switch rounding {
	case RoundToRupee:
		totals.GrandTotal = exact.Round(0)
		totals.RoundOff = totals.GrandTotal.MustSubtract(exact)
	default:
		totals.GrandTotal = exact
		totals.RoundOff = valueobject.ZeroINR()
	}

	return totals, nil
}
