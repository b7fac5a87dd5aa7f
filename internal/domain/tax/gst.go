// Package tax implements Indian GST apportionment, invoice total
// aggregation and TCS (Tax Collected at Source) threshold logic.
//
// Invoice-level tax is always derived by summing already-priced line
// snapshots, never recomputed from master rates, so historical invoices
// stay stable when rates change. TCS cumulative totals are collected-at-
// transaction: a backdated transaction entered later does not rewrite the
// snapshots of transactions already recorded.
package tax

import (
	"github.com/shopspring/decimal"
)

// GSTBreakup splits a GST amount by place of supply. Intra-state supplies
// split into equal Central and State halves; inter-state supplies carry the
// whole amount as Integrated GST.
type GSTBreakup struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
	IGST decimal.Decimal
}

// Total returns the full GST amount represented by the breakup
func (b GSTBreakup) Total() decimal.Decimal {
	return b.CGST.Add(b.SGST).Add(b.IGST)
}

// Apportion splits an already-known GST amount. It is purely arithmetic:
// the amount is never derived here, only divided. For intra-state supplies
// CGST takes the rounded half and SGST the remainder, so the two always
// reconcile to the source amount even on an odd paise.
func Apportion(gstAmount decimal.Decimal, intraState bool) GSTBreakup {
	if !intraState {
		return GSTBreakup{
			CGST: decimal.Zero,
			SGST: decimal.Zero,
			IGST: gstAmount,
		}
	}

	cgst := gstAmount.Div(decimal.NewFromInt(2)).Round(2)
	return GSTBreakup{
		CGST: cgst,
		SGST: gstAmount.Sub(cgst),
		IGST: decimal.Zero,
	}
}
