// Package rates resolves metal and stone unit rates from an append-only,
// time-ordered rate history. Pricing must never proceed without a configured
// rate; resolution failures are hard errors, not zero-rate fallbacks.
package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jewelerp/backend/internal/domain/shared"
)

// ErrNoRateConfigured is returned when no active rate record exists for a
// subject at the requested point in time
var ErrNoRateConfigured = shared.NewDomainError("NO_RATE_CONFIGURED", "No active rate configured for subject")

// Source supplies the candidate rate records for a subject. Implementations
// may be an in-memory history (tests) or a database query (production), so
// lookups take a context and should honour its deadline.
type Source interface {
	// ActiveRecords returns all active records for the subject with
	// EffectiveDate <= asOf, in no particular order.
	ActiveRecords(ctx context.Context, subjectKey string, asOf time.Time) ([]RateRecord, error)
}

// Resolver answers "what did this subject cost per gram/carat at this time"
type Resolver struct {
	source Source
}

// NewResolver creates a Resolver backed by the given source
func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// CurrentRate returns the applicable unit rate for a subject as of the given
// time: the most recent active record, ties broken by highest sequence
// (latest appended wins). Returns ErrNoRateConfigured when nothing matches.
func (r *Resolver) CurrentRate(ctx context.Context, subjectKey string, asOf time.Time) (decimal.Decimal, error) {
	records, err := r.source.ActiveRecords(ctx, subjectKey, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	best := pickLatest(records)
	if best == nil {
		return decimal.Zero, ErrNoRateConfigured
	}
	return best.UnitRate, nil
}

// MetalRate resolves the per-gram rate for a metal purity as of the given time
func (r *Resolver) MetalRate(ctx context.Context, purityCode string, asOf time.Time) (decimal.Decimal, error) {
	return r.CurrentRate(ctx, MetalSubjectKey(purityCode), asOf)
}

// StoneRate resolves the per-carat rate for a stone descriptor as of the
// given time. Matching is best-effort: records agreeing on more of the
// requested 4Cs/grade fields are preferred, falling back to stone-type-only
// records when no narrower match exists. Among equally specific candidates
// the most recent EffectiveDate wins, then the highest sequence.
func (r *Resolver) StoneRate(ctx context.Context, desc StoneDescriptor, asOf time.Time) (decimal.Decimal, error) {
	records, err := r.source.ActiveRecords(ctx, desc.SubjectKey(), asOf)
	if err != nil {
		return decimal.Zero, err
	}

	bestSpecificity := -1
	var candidates []RateRecord
	for _, rec := range records {
		ok, specificity := rec.matches(desc)
		if !ok {
			continue
		}
		switch {
		case specificity > bestSpecificity:
			bestSpecificity = specificity
			candidates = candidates[:0]
			candidates = append(candidates, rec)
		case specificity == bestSpecificity:
			candidates = append(candidates, rec)
		}
	}

	best := pickLatest(candidates)
	if best == nil {
		return decimal.Zero, ErrNoRateConfigured
	}
	return best.UnitRate, nil
}

// pickLatest returns the record with the latest EffectiveDate, ties broken by
// highest Seq
func pickLatest(records []RateRecord) *RateRecord {
	var best *RateRecord
	for i := range records {
		rec := &records[i]
		if best == nil ||
			rec.EffectiveDate.After(best.EffectiveDate) ||
			(rec.EffectiveDate.Equal(best.EffectiveDate) && rec.Seq > best.Seq) {
			best = rec
		}
	}
	return best
}
