package rates

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func appendMetalRate(t *testing.T, h *History, purity string, rate float64, effective time.Time) *RateRecord {
	t.Helper()
	rec, err := NewMetalRateRecord(purity, decimal.NewFromFloat(rate), effective)
	require.NoError(t, err)
	require.NoError(t, h.Append(rec))
	return rec
}

func appendStoneRate(t *testing.T, h *History, desc StoneDescriptor, rate float64, effective time.Time) *RateRecord {
	t.Helper()
	rec, err := NewStoneRateRecord(desc, decimal.NewFromFloat(rate), effective)
	require.NoError(t, err)
	require.NoError(t, h.Append(rec))
	return rec
}

func TestNewMetalRateRecord(t *testing.T) {
	t.Run("fails with empty purity", func(t *testing.T) {
		_, err := NewMetalRateRecord("", decimal.NewFromInt(6000), date(2025, 4, 1))
		require.Error(t, err)
	})

	t.Run("fails with negative rate", func(t *testing.T) {
		_, err := NewMetalRateRecord("22K", decimal.NewFromInt(-1), date(2025, 4, 1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative")
	})

	t.Run("new records are active", func(t *testing.T) {
		rec, err := NewMetalRateRecord("22K", decimal.NewFromInt(6000), date(2025, 4, 1))
		require.NoError(t, err)
		assert.True(t, rec.Active)
		assert.Equal(t, "metal/22K", rec.SubjectKey)
	})
}

func TestResolver_MetalRate(t *testing.T) {
	ctx := context.Background()

	t.Run("picks most recent record on or before asOf", func(t *testing.T) {
		h := NewHistory()
		appendMetalRate(t, h, "22K", 5800, date(2025, 4, 1))
		appendMetalRate(t, h, "22K", 6000, date(2025, 6, 1))
		appendMetalRate(t, h, "22K", 6200, date(2025, 9, 1))
		resolver := NewResolver(h)

		rate, err := resolver.MetalRate(ctx, "22K", date(2025, 7, 15))
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(6000)))
	})

	t.Run("ignores future-dated records", func(t *testing.T) {
		h := NewHistory()
		appendMetalRate(t, h, "22K", 9999, date(2099, 1, 1))
		resolver := NewResolver(h)

		_, err := resolver.MetalRate(ctx, "22K", date(2025, 7, 15))
		assert.ErrorIs(t, err, ErrNoRateConfigured)
	})

	t.Run("ignores deactivated records", func(t *testing.T) {
		h := NewHistory()
		appendMetalRate(t, h, "22K", 5800, date(2025, 4, 1))
		appendMetalRate(t, h, "22K", 6000, date(2025, 6, 1))
		latest := appendMetalRate(t, h, "22K", 6200, date(2025, 9, 1))
		require.NoError(t, h.Deactivate(latest.ID))
		resolver := NewResolver(h)

		rate, err := resolver.MetalRate(ctx, "22K", date(2025, 10, 1))
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(6000)))
	})

	t.Run("fails when no rate configured", func(t *testing.T) {
		resolver := NewResolver(NewHistory())
		_, err := resolver.MetalRate(ctx, "18K", date(2025, 7, 15))
		assert.ErrorIs(t, err, ErrNoRateConfigured)
	})

	t.Run("same effective date resolves to latest appended", func(t *testing.T) {
		h := NewHistory()
		appendMetalRate(t, h, "22K", 6000, date(2025, 6, 1))
		appendMetalRate(t, h, "22K", 6050, date(2025, 6, 1))
		resolver := NewResolver(h)

		rate, err := resolver.MetalRate(ctx, "22K", date(2025, 6, 2))
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(6050)))
	})

	t.Run("subjects do not leak into each other", func(t *testing.T) {
		h := NewHistory()
		appendMetalRate(t, h, "22K", 6000, date(2025, 6, 1))
		appendMetalRate(t, h, "18K", 4900, date(2025, 6, 1))
		resolver := NewResolver(h)

		rate, err := resolver.MetalRate(ctx, "18K", date(2025, 6, 2))
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(4900)))
	})
}

func TestResolver_StoneRate(t *testing.T) {
	ctx := context.Background()
	asOf := date(2025, 8, 1)

	carat := func(v float64) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
	}

	t.Run("prefers more specific descriptor match", func(t *testing.T) {
		h := NewHistory()
		appendStoneRate(t, h, StoneDescriptor{StoneCode: "DIAMOND"}, 40000, date(2025, 6, 1))
		appendStoneRate(t, h, StoneDescriptor{StoneCode: "DIAMOND", Cut: "ROUND", Clarity: "VS1"}, 55000, date(2025, 5, 1))
		resolver := NewResolver(h)

		rate, err := resolver.StoneRate(ctx, StoneDescriptor{StoneCode: "DIAMOND", Cut: "ROUND", Clarity: "VS1"}, asOf)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(55000)))
	})

	t.Run("falls back to stone-only record when no finer match", func(t *testing.T) {
		h := NewHistory()
		appendStoneRate(t, h, StoneDescriptor{StoneCode: "DIAMOND"}, 40000, date(2025, 6, 1))
		appendStoneRate(t, h, StoneDescriptor{StoneCode: "DIAMOND", Cut: "PRINCESS"}, 60000, date(2025, 6, 1))
		resolver := NewResolver(h)

		rate, err := resolver.StoneRate(ctx, StoneDescriptor{StoneCode: "DIAMOND", Cut: "ROUND"}, asOf)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(40000)))
	})

	t.Run("matches on carat and grade", func(t *testing.T) {
		h := NewHistory()
		appendStoneRate(t, h, StoneDescriptor{StoneCode: "RUBY", Grade: "AAA"}, 12000, date(2025, 6, 1))
		appendStoneRate(t, h, StoneDescriptor{StoneCode: "RUBY", Carat: carat(1.5), Grade: "AAA"}, 15000, date(2025, 6, 1))
		resolver := NewResolver(h)

		rate, err := resolver.StoneRate(ctx, StoneDescriptor{StoneCode: "RUBY", Carat: carat(1.5), Grade: "AAA"}, asOf)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(15000)))
	})

	t.Run("equal specificity resolves by recency then sequence", func(t *testing.T) {
		h := NewHistory()
		appendStoneRate(t, h, StoneDescriptor{StoneCode: "EMERALD"}, 8000, date(2025, 5, 1))
		appendStoneRate(t, h, StoneDescriptor{StoneCode: "EMERALD"}, 8500, date(2025, 6, 1))
		appendStoneRate(t, h, StoneDescriptor{StoneCode: "EMERALD"}, 8700, date(2025, 6, 1))
		resolver := NewResolver(h)

		rate, err := resolver.StoneRate(ctx, StoneDescriptor{StoneCode: "EMERALD"}, asOf)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(8700)))
	})

	t.Run("fails when no record for stone type", func(t *testing.T) {
		resolver := NewResolver(NewHistory())
		_, err := resolver.StoneRate(ctx, StoneDescriptor{StoneCode: "SAPPHIRE"}, asOf)
		assert.ErrorIs(t, err, ErrNoRateConfigured)
	})
}
