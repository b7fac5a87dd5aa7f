package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jewelerp/backend/internal/domain/rates"
	"github.com/jewelerp/backend/internal/domain/shared"
)

// GormRateRepository implements the rate history over an append-only
// rate_records table. It satisfies rates.Source for the resolver.
type GormRateRepository struct {
	db *gorm.DB
}

// NewGormRateRepository creates a new GormRateRepository
func NewGormRateRepository(db *gorm.DB) *GormRateRepository {
	return &GormRateRepository{db: db}
}

// ActiveRecords returns all active records for the subject effective at or
// before asOf. Resolution order is the resolver's concern; no ordering is
// guaranteed here.
func (r *GormRateRepository) ActiveRecords(ctx context.Context, subjectKey string, asOf time.Time) ([]rates.RateRecord, error) {
	var records []rates.RateRecord
	if err := r.db.WithContext(ctx).
		Where("subject_key = ? AND active = ? AND effective_date <= ?", subjectKey, true, asOf).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Append inserts a new rate record. Records are never updated in place.
func (r *GormRateRepository) Append(ctx context.Context, record *rates.RateRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Deactivate soft-deletes a rate record so it no longer resolves
func (r *GormRateRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&rates.RateRecord{}).
		Where("id = ?", id).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a rate record by ID
func (r *GormRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*rates.RateRecord, error) {
	var record rates.RateRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindBySubject returns the full history for a subject, newest first,
// including deactivated records. Used by rate audit screens.
func (r *GormRateRepository) FindBySubject(ctx context.Context, subjectKey string, filter shared.Filter) ([]rates.RateRecord, error) {
	var records []rates.RateRecord
	query := r.db.WithContext(ctx).
		Where("subject_key = ?", subjectKey).
		Order("effective_date DESC, seq DESC")

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
