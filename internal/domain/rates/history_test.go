package rates

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_Append(t *testing.T) {
	t.Run("assigns increasing sequence numbers", func(t *testing.T) {
		h := NewHistory()
		first := appendMetalRate(t, h, "22K", 6000, date(2025, 6, 1))
		second := appendMetalRate(t, h, "18K", 4900, date(2025, 6, 1))

		assert.Less(t, first.Seq, second.Seq)
		assert.Equal(t, 2, h.Len())
	})

	t.Run("rejects nil record", func(t *testing.T) {
		h := NewHistory()
		require.Error(t, h.Append(nil))
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		h := NewHistory()
		rec, err := NewMetalRateRecord("22K", decimal.NewFromInt(6000), date(2025, 6, 1))
		require.NoError(t, err)
		rec.UnitRate = decimal.NewFromInt(-1)
		require.Error(t, h.Append(rec))
	})
}

func TestHistory_Deactivate(t *testing.T) {
	h := NewHistory()
	rec := appendMetalRate(t, h, "22K", 6000, date(2025, 6, 1))

	require.NoError(t, h.Deactivate(rec.ID))

	records, err := h.ActiveRecords(context.Background(), "metal/22K", date(2025, 7, 1))
	require.NoError(t, err)
	assert.Empty(t, records)

	// record stays in the history for audit
	assert.Equal(t, 1, h.Len())

	assert.Error(t, h.Deactivate(uuid.New()))
}

func TestHistory_ConcurrentAppendAndRead(t *testing.T) {
	h := NewHistory()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			rec, err := NewMetalRateRecord("22K", decimal.NewFromInt(int64(6000+i)), date(2025, 6, 1).Add(time.Duration(i)*time.Hour))
			if err == nil {
				_ = h.Append(rec)
			}
		}
	}()

	for i := 0; i < 100; i++ {
		_, _ = h.ActiveRecords(context.Background(), "metal/22K", date(2025, 12, 1))
	}
	<-done

	assert.Equal(t, 100, h.Len())
}
