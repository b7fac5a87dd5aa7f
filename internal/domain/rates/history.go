package rates

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jewelerp/backend/internal/domain/shared"
)

// History is an in-memory, time-indexed rate store implementing Source.
// Tests inject fixed histories; production uses the GORM-backed repository.
// Appends assign a monotonically increasing sequence used as the tie-break
// between records sharing an effective date.
type History struct {
	mu      sync.RWMutex
	records map[string][]RateRecord
	nextSeq int64
}

// NewHistory creates an empty rate history
func NewHistory() *History {
	return &History{
		records: make(map[string][]RateRecord),
		nextSeq: 1,
	}
}

// Append adds a rate record to the history. Records are never replaced;
// a newer record for the same subject simply shadows older ones.
func (h *History) Append(record *RateRecord) error {
	if record == nil {
		return shared.ErrInvalidInput
	}
	if record.UnitRate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Unit rate cannot be negative")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	record.Seq = h.nextSeq
	h.nextSeq++
	h.records[record.SubjectKey] = append(h.records[record.SubjectKey], *record)
	return nil
}

// Deactivate soft-deletes a record by ID. Returns shared.ErrNotFound when no
// record with that ID exists.
func (h *History) Deactivate(id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, recs := range h.records {
		for i := range recs {
			if recs[i].ID == id {
				h.records[key][i].Active = false
				return nil
			}
		}
	}
	return shared.ErrNotFound
}

// ActiveRecords implements Source
func (h *History) ActiveRecords(_ context.Context, subjectKey string, asOf time.Time) ([]RateRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []RateRecord
	for _, rec := range h.records[subjectKey] {
		if rec.Active && !rec.EffectiveDate.After(asOf) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Len returns the total number of records held, active or not
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, recs := range h.records {
		n += len(recs)
	}
	return n
}
