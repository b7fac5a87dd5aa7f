package tax

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/shared"
)

// TcsType classifies a TCS transaction
type TcsType string

const (
	TcsBelowThreshold TcsType = "BELOW_THRESHOLD" // cumulative FY sales still under the statutory threshold
	TcsWithPAN        TcsType = "WITH_PAN"        // valid PAN and verified KYC, concessional rate
	TcsWithoutPAN     TcsType = "WITHOUT_PAN"     // no usable PAN, penal rate
	TcsExempted       TcsType = "EXEMPTED"        // statutorily exempt buyer
)

// IsValid checks if the type is a known TcsType
func (t TcsType) IsValid() bool {
	switch t {
	case TcsBelowThreshold, TcsWithPAN, TcsWithoutPAN, TcsExempted:
		return true
	}
	return false
}

// String returns the string representation of TcsType
func (t TcsType) String() string {
	return string(t)
}

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// IsValidPAN reports whether a string is a well-formed Indian PAN.
// A malformed PAN is not an error: the buyer is simply treated as having
// no valid PAN and charged the penal rate.
func IsValidPAN(pan string) bool {
	return panPattern.MatchString(pan)
}

// TcsConfig holds the statutory TCS parameters. Values are configurable
// because thresholds and rates change by Finance Act.
type TcsConfig struct {
	Threshold      decimal.Decimal // cumulative FY sales above which TCS applies
	RateWithPAN    decimal.Decimal // percent, for PAN + verified KYC buyers
	RateWithoutPAN decimal.Decimal // percent, otherwise
}

// DefaultTcsConfig returns the parameters in force for sale of goods:
// threshold of ten lakh rupees, 0.1% with PAN, 1% without.
func DefaultTcsConfig() TcsConfig {
	return TcsConfig{
		Threshold:      decimal.NewFromInt(1000000),
		RateWithPAN:    decimal.NewFromFloat(0.1),
		RateWithoutPAN: decimal.NewFromInt(1),
	}
}

// TcsTransaction is one entry in the append-only TCS ledger. The cumulative
// sale amount is snapshotted at creation and is write-once: inserting
// earlier-dated transactions later never rewrites it.
type TcsTransaction struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq                  int64     `gorm:"autoIncrement;uniqueIndex"`
	CustomerID           uuid.UUID `gorm:"type:uuid;index:idx_tcs_customer_fy"`
	FinancialYear        string    `gorm:"index:idx_tcs_customer_fy"`
	Quarter              int
	TransactionDate      time.Time
	SaleAmount           decimal.Decimal `gorm:"type:numeric(14,2)"`
	CumulativeSaleAmount decimal.Decimal `gorm:"type:numeric(16,2)"` // including this transaction
	TaxableAmount        decimal.Decimal `gorm:"type:numeric(14,2)"` // portion of SaleAmount TCS applies to
	Rate                 decimal.Decimal `gorm:"type:numeric(6,3)"`
	Amount               decimal.Decimal `gorm:"type:numeric(14,2)"`
	Type                 TcsType         `gorm:"type:varchar(20)"`
	PAN                  string
	CreatedAt            time.Time
}

// Ledger is the append-only store of TCS transactions. The cumulative sum
// must order by insertion sequence, not transaction date.
type Ledger interface {
	// CumulativeSaleAmount returns the sum of prior sale amounts for the
	// customer in the financial year.
	CumulativeSaleAmount(ctx context.Context, customerID uuid.UUID, fy FinancialYear) (decimal.Decimal, error)

	// Append records a new transaction.
	Append(ctx context.Context, txn *TcsTransaction) error
}

// TcsInput describes a sale transaction to evaluate for TCS
type TcsInput struct {
	CustomerID      uuid.UUID
	SaleAmount      decimal.Decimal
	TransactionDate time.Time
	PAN             string
	KYCVerified     bool
	Exempted        bool
}

// TcsResult is the computed TCS decision for one transaction
type TcsResult struct {
	IsApplicable         bool
	Type                 TcsType
	FinancialYear        FinancialYear
	Quarter              int
	TaxableAmount        decimal.Decimal
	Rate                 decimal.Decimal
	Amount               decimal.Decimal
	CumulativeSaleAmount decimal.Decimal // including this transaction
	Transaction          *TcsTransaction
}

// TcsEngine evaluates TCS per transaction against a per-customer-per-FY
// running total. The read-then-append on the ledger is serialized per
// (customer, financial year) so concurrent invoices for one customer cannot
// both observe a pre-threshold total and under-collect.
type TcsEngine struct {
	config TcsConfig
	ledger Ledger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTcsEngine creates a TCS engine over the given ledger
func NewTcsEngine(config TcsConfig, ledger Ledger) *TcsEngine {
	return &TcsEngine{
		config: config,
		ledger: ledger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// keyLock returns the serialization lock for a (customer, FY) pair.
// Entries are never evicted; the map is bounded by the number of active
// customer and financial year combinations.
func (e *TcsEngine) keyLock(customerID uuid.UUID, fy FinancialYear) *sync.Mutex {
	key := customerID.String() + "/" + fy.String()

	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[key] = lock
	}
	return lock
}

// Process evaluates TCS for a sale, appends the resulting transaction to
// the ledger and returns the decision. Below-threshold and no-PAN outcomes
// are business-normal results, not errors.
func (e *TcsEngine) Process(ctx context.Context, in TcsInput) (*TcsResult, error) {
	if in.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if in.SaleAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Sale amount must be positive")
	}
	if in.TransactionDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}

	fy := FinancialYearOf(in.TransactionDate)
	quarter := QuarterOf(in.TransactionDate)

	lock := e.keyLock(in.CustomerID, fy)
	lock.Lock()
	defer lock.Unlock()

	cumulative, err := e.ledger.CumulativeSaleAmount(ctx, in.CustomerID, fy)
	if err != nil {
		return nil, err
	}

	totalAfter := cumulative.Add(in.SaleAmount)
	result := &TcsResult{
		FinancialYear:        fy,
		Quarter:              quarter,
		TaxableAmount:        decimal.Zero,
		Rate:                 decimal.Zero,
		Amount:               decimal.Zero,
		CumulativeSaleAmount: totalAfter,
	}

	switch {
	case in.Exempted:
		result.Type = TcsExempted

	case totalAfter.LessThanOrEqual(e.config.Threshold):
		result.Type = TcsBelowThreshold

	default:
		// TCS applies only to the portion crossing the threshold the
		// first time, and to the full sale amount thereafter
		if cumulative.GreaterThanOrEqual(e.config.Threshold) {
			result.TaxableAmount = in.SaleAmount
		} else {
			result.TaxableAmount = totalAfter.Sub(e.config.Threshold)
		}

		if IsValidPAN(in.PAN) && in.KYCVerified {
			result.Type = TcsWithPAN
			result.Rate = e.config.RateWithPAN
		} else {
			result.Type = TcsWithoutPAN
			result.Rate = e.config.RateWithoutPAN
		}

		result.IsApplicable = true
		result.Amount = result.TaxableAmount.Mul(result.Rate).Div(decimal.NewFromInt(100)).Round(2)
	}

	txn := &TcsTransaction{
		ID:                   uuid.New(),
		CustomerID:           in.CustomerID,
		FinancialYear:        fy.String(),
		Quarter:              quarter,
		TransactionDate:      in.TransactionDate,
		SaleAmount:           in.SaleAmount,
		CumulativeSaleAmount: totalAfter,
		TaxableAmount:        result.TaxableAmount,
		Rate:                 result.Rate,
		Amount:               result.Amount,
		Type:                 result.Type,
		PAN:                  in.PAN,
		CreatedAt:            time.Now(),
	}
	if err := e.ledger.Append(ctx, txn); err != nil {
		return nil, err
	}

	result.Transaction = txn
	return result, nil
}
