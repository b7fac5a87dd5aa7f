package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/pricing"
	"github.com/jewelerp/backend/internal/domain/tax"
)

// ==================== Invoice DTOs ====================

// StoneInput describes a stone on an invoice line whose value should be
// resolved from the rate history rather than supplied pre-valued
type StoneInput struct {
	StoneCode   string          `json:"stone_code" validate:"required,min=1,max=50"`
	CaratWeight decimal.Decimal `json:"carat_weight" validate:"required"`
	Cut         string          `json:"cut"`
	Color       string          `json:"color"`
	Clarity     string          `json:"clarity"`
	Grade       string          `json:"grade"`
}

// InvoiceLineRequest represents one jewellery item on the invoice
type InvoiceLineRequest struct {
	Description     string          `json:"description" validate:"max=200"`
	SKU             string          `json:"sku" validate:"required,min=1,max=50"`
	MetalPurityCode string          `json:"metal_purity_code" validate:"required,min=1,max=50"`
	GrossWeight     decimal.Decimal `json:"gross_weight"`
	NetMetalWeight  decimal.Decimal `json:"net_metal_weight" validate:"required"`

	MakingChargeType  string          `json:"making_charge_type" validate:"required,oneof=PER_GRAM PERCENTAGE FIXED"`
	MakingChargeValue decimal.Decimal `json:"making_charge_value" validate:"required"`
	WastagePercent    decimal.Decimal `json:"wastage_percent"`

	// StoneAmount covers pre-valued stones; Stones are valued per carat
	// from the rate history. Both contribute to the line's stone total.
	StoneAmount decimal.Decimal `json:"stone_amount"`
	Stones      []StoneInput    `json:"stones" validate:"omitempty,dive"`

	Discount   decimal.Decimal `json:"discount"`
	GSTPercent decimal.Decimal `json:"gst_percent"`
	Quantity   int64           `json:"quantity" validate:"required,min=1"`

	HUID       string `json:"huid" validate:"max=20"`
	Hallmarked bool   `json:"hallmarked"`
}

// CreateInvoiceRequest represents a request to compute a full invoice
type CreateInvoiceRequest struct {
	CustomerID  uuid.UUID            `json:"customer_id" validate:"required"`
	InvoiceDate time.Time            `json:"invoice_date" validate:"required"`
	IntraState  bool                 `json:"intra_state"`
	Rounding    string               `json:"rounding" validate:"omitempty,oneof=ROUND_TO_RUPEE ROUND_NONE"`
	PAN         string               `json:"pan"`
	KYCVerified bool                 `json:"kyc_verified"`
	TcsExempted bool                 `json:"tcs_exempted"`
	Lines       []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PriceLineRequest prices a single line without raising an invoice,
// for quotation screens
type PriceLineRequest struct {
	AsOf time.Time          `json:"as_of"`
	Line InvoiceLineRequest `json:"line" validate:"required"`
}

// InvoiceLineResponse is the priced vector for one invoice line
type InvoiceLineResponse struct {
	Description   string          `json:"description"`
	SKU           string          `json:"sku"`
	MetalRate     decimal.Decimal `json:"metal_rate"`
	MetalAmount   decimal.Decimal `json:"metal_amount"`
	MakingCharges decimal.Decimal `json:"making_charges"`
	WastageWeight decimal.Decimal `json:"wastage_weight"`
	WastageAmount decimal.Decimal `json:"wastage_amount"`
	StoneAmount   decimal.Decimal `json:"stone_amount"`
	ItemSubtotal  decimal.Decimal `json:"item_subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	GSTPercentage decimal.Decimal `json:"gst_percentage"`
	GSTAmount     decimal.Decimal `json:"gst_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Quantity      int64           `json:"quantity"`
	HUID          string          `json:"huid,omitempty"`
	Hallmarked    bool            `json:"hallmarked"`
}

// TcsResponse is the TCS decision attached to an invoice
type TcsResponse struct {
	IsApplicable         bool            `json:"is_applicable"`
	Type                 string          `json:"type"`
	FinancialYear        string          `json:"financial_year"`
	Quarter              int             `json:"quarter"`
	TaxableAmount        decimal.Decimal `json:"taxable_amount"`
	Rate                 decimal.Decimal `json:"rate"`
	Amount               decimal.Decimal `json:"amount"`
	CumulativeSaleAmount decimal.Decimal `json:"cumulative_sale_amount"`
}

// EInvoiceDetails carries the registrar's opaque identifiers, embedded in
// the invoice untouched
type EInvoiceDetails struct {
	IRN          string `json:"irn"`
	SignedQRCode string `json:"signed_qr_code"`
	AckNumber    string `json:"ack_number"`
	AckDate      string `json:"ack_date"`
}

// InvoiceComputation is the immutable result of pricing one invoice
type InvoiceComputation struct {
	InvoiceNumber string                `json:"invoice_number"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	InvoiceDate   time.Time             `json:"invoice_date"`
	IntraState    bool                  `json:"intra_state"`
	Lines         []InvoiceLineResponse `json:"lines"`

	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	TotalGST      decimal.Decimal `json:"total_gst"`
	RoundOff      decimal.Decimal `json:"round_off"`
	GrandTotal    decimal.Decimal `json:"grand_total"`

	Tcs           *TcsResponse    `json:"tcs,omitempty"`
	AmountPayable decimal.Decimal `json:"amount_payable"` // grand total plus TCS

	EInvoice *EInvoiceDetails `json:"e_invoice,omitempty"`
}

// toLineResponse converts a priced line to its response form
func toLineResponse(req InvoiceLineRequest, metalRate decimal.Decimal, priced pricing.LineItemPricing) InvoiceLineResponse {
	return InvoiceLineResponse{
		Description:   req.Description,
		SKU:           req.SKU,
		MetalRate:     metalRate,
		MetalAmount:   priced.MetalAmount.Amount(),
		MakingCharges: priced.MakingCharges.Amount(),
		WastageWeight: priced.WastageWeight.Grams(),
		WastageAmount: priced.WastageAmount.Amount(),
		StoneAmount:   priced.StoneAmount.Amount(),
		ItemSubtotal:  priced.ItemSubtotal.Amount(),
		Discount:      priced.Discount.Amount(),
		TaxableAmount: priced.TaxableAmount.Amount(),
		GSTPercentage: priced.GSTPercentage,
		GSTAmount:     priced.GSTAmount.Amount(),
		TotalAmount:   priced.TotalAmount.Amount(),
		Quantity:      priced.Quantity,
		HUID:          priced.HUID,
		Hallmarked:    priced.Hallmarked,
	}
}

// toTcsResponse converts a TCS decision to its response form
func toTcsResponse(result *tax.TcsResult) *TcsResponse {
	return &TcsResponse{
		IsApplicable:         result.IsApplicable,
		Type:                 result.Type.String(),
		FinancialYear:        result.FinancialYear.String(),
		Quarter:              result.Quarter,
		TaxableAmount:        result.TaxableAmount,
		Rate:                 result.Rate,
		Amount:               result.Amount,
		CumulativeSaleAmount: result.CumulativeSaleAmount,
	}
}
