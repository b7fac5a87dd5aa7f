package rates

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/shared"
)

// SubjectKind distinguishes what a rate record prices
type SubjectKind string

const (
	SubjectMetal SubjectKind = "METAL"
	SubjectStone SubjectKind = "STONE"
)

// MetalSubjectKey builds the subject key for a metal purity (e.g. "22K", "18K")
func MetalSubjectKey(purityCode string) string {
	return "metal/" + purityCode
}

// StoneSubjectKey builds the subject key for a stone type
func StoneSubjectKey(stoneCode string) string {
	return "stone/" + stoneCode
}

// StoneDescriptor narrows a stone rate lookup beyond the stone type.
// Empty fields are treated as "not specified" and do not constrain the match.
type StoneDescriptor struct {
	StoneCode string
	Carat     decimal.NullDecimal
	Cut       string
	Color     string
	Clarity   string
	Grade     string
}

// SubjectKey returns the stone-type subject key for this descriptor
func (d StoneDescriptor) SubjectKey() string {
	return StoneSubjectKey(d.StoneCode)
}

// RateRecord is one entry in a subject's rate time series.
// Records are append-only: the only permitted mutation is soft deactivation,
// so historical invoices stay explainable against the rates that priced them.
type RateRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq           int64     `gorm:"autoIncrement;uniqueIndex"`
	SubjectKind   SubjectKind
	SubjectKey    string          `gorm:"index:idx_rate_subject_effective"`
	UnitRate      decimal.Decimal `gorm:"type:numeric(14,2)"`
	EffectiveDate time.Time       `gorm:"index:idx_rate_subject_effective"`
	Active        bool            `gorm:"not null;default:true"`

	// Optional stone descriptor fields, unset for metal records
	Carat   decimal.NullDecimal `gorm:"type:numeric(8,3)"`
	Cut     string
	Color   string
	Clarity string
	Grade   string

	CreatedAt time.Time
}

// NewMetalRateRecord creates a rate record for a metal purity
func NewMetalRateRecord(purityCode string, unitRate decimal.Decimal, effectiveDate time.Time) (*RateRecord, error) {
	if purityCode == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Purity code cannot be empty")
	}
	if unitRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", fmt.Sprintf("Unit rate cannot be negative: %s", unitRate))
	}

	return &RateRecord{
		ID:            uuid.New(),
		SubjectKind:   SubjectMetal,
		SubjectKey:    MetalSubjectKey(purityCode),
		UnitRate:      unitRate,
		EffectiveDate: effectiveDate,
		Active:        true,
		CreatedAt:     time.Now(),
	}, nil
}

// NewStoneRateRecord creates a rate record for a stone, optionally narrowed by 4Cs/grade
func NewStoneRateRecord(desc StoneDescriptor, unitRate decimal.Decimal, effectiveDate time.Time) (*RateRecord, error) {
	if desc.StoneCode == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Stone code cannot be empty")
	}
	if unitRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", fmt.Sprintf("Unit rate cannot be negative: %s", unitRate))
	}

	return &RateRecord{
		ID:            uuid.New(),
		SubjectKind:   SubjectStone,
		SubjectKey:    desc.SubjectKey(),
		UnitRate:      unitRate,
		EffectiveDate: effectiveDate,
		Active:        true,
		Carat:         desc.Carat,
		Cut:           desc.Cut,
		Color:         desc.Color,
		Clarity:       desc.Clarity,
		Grade:         desc.Grade,
		CreatedAt:     time.Now(),
	}, nil
}

// Deactivate soft-deletes the record. Deactivated records never resolve,
// but remain in the history for audit.
func (r *RateRecord) Deactivate() {
	r.Active = false
}

// matches reports whether the record is compatible with the requested
// descriptor, and how many descriptor fields it matched on. A record is
// compatible when every field present on both sides agrees; fields absent
// on either side do not constrain the match.
func (r *RateRecord) matches(desc StoneDescriptor) (compatible bool, specificity int) {
	if desc.Carat.Valid && r.Carat.Valid {
		if !desc.Carat.Decimal.Equal(r.Carat.Decimal) {
			return false, 0
		}
		specificity++
	}
	for _, pair := range [][2]string{
		{desc.Cut, r.Cut},
		{desc.Color, r.Color},
		{desc.Clarity, r.Clarity},
		{desc.Grade, r.Grade},
	} {
		if pair[0] != "" && pair[1] != "" {
			if pair[0] != pair[1] {
				return false, 0
			}
			specificity++
		}
	}
	return true, specificity
}
