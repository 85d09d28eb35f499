package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func standardRates() Rates {
	return Rates{
		TierOnePerDay: decimal.NewFromInt(6),
		TierTwoPerDay: decimal.NewFromInt(3),
	}
}

func quoteAfterDays(t *testing.T, days int, discount bool) Breakdown {
	t.Helper()
	rentedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	asOf := rentedAt.Add(time.Duration(days) * 24 * time.Hour)
	return Quote(rentedAt, asOf, standardRates(), decimal.NewFromFloat(24.99), discount)
}

func TestQuote_FreeTier(t *testing.T) {
	t.Run("zero days costs nothing", func(t *testing.T) {
		b := quoteAfterDays(t, 0, true)
		assert.Equal(t, 0, b.RentalDays)
		assert.True(t, b.Total.IsZero())
	})

	t.Run("10 days costs nothing", func(t *testing.T) {
		b := quoteAfterDays(t, 10, true)
		assert.Equal(t, 10, b.RentalDays)
		assert.Equal(t, 10, b.FreeDays)
		assert.True(t, b.Total.IsZero())
	})

	t.Run("exactly 30 days is still free", func(t *testing.T) {
		b := quoteAfterDays(t, 30, true)
		assert.Equal(t, 30, b.FreeDays)
		assert.True(t, b.TierOneCost.IsZero())
		assert.True(t, b.Total.IsZero())
	})

	t.Run("no discount applied to a zero subtotal", func(t *testing.T) {
		b := quoteAfterDays(t, 15, true)
		assert.True(t, b.Discount.IsZero())
	})
}

func TestQuote_TierOne(t *testing.T) {
	t.Run("45 days bills 15 tier-one days", func(t *testing.T) {
		b := quoteAfterDays(t, 45, false)
		assert.True(t, b.TierOneCost.Equal(decimal.NewFromInt(90)), "tier one cost = %s", b.TierOneCost)
		assert.True(t, b.TierTwoCost.IsZero())
		assert.True(t, b.Total.Equal(decimal.NewFromInt(90)))
	})

	t.Run("45 days with loyalty discount totals 81", func(t *testing.T) {
		b := quoteAfterDays(t, 45, true)
		assert.True(t, b.Total.Equal(decimal.NewFromInt(81)), "total = %s", b.Total)
		assert.True(t, b.Discount.Equal(decimal.NewFromInt(9)))
	})

	t.Run("exactly 60 days fills the tier-one band only", func(t *testing.T) {
		b := quoteAfterDays(t, 60, false)
		assert.True(t, b.TierOneCost.Equal(decimal.NewFromInt(180)))
		assert.True(t, b.TierTwoCost.IsZero())
	})
}

func TestQuote_TierTwo(t *testing.T) {
	t.Run("75 days bills both bands", func(t *testing.T) {
		b := quoteAfterDays(t, 75, false)
		assert.True(t, b.TierOneCost.Equal(decimal.NewFromInt(180)))
		assert.True(t, b.TierTwoCost.Equal(decimal.NewFromInt(45)))
		assert.True(t, b.Total.Equal(decimal.NewFromInt(225)))
	})

	t.Run("75 days with loyalty discount totals 202.50", func(t *testing.T) {
		b := quoteAfterDays(t, 75, true)
		assert.True(t, b.Total.Equal(decimal.NewFromFloat(202.50)), "total = %s", b.Total)
	})

	t.Run("exactly 100 days still bills per day", func(t *testing.T) {
		b := quoteAfterDays(t, 100, false)
		assert.False(t, b.CapApplied)
		// 30*6 + 40*3
		assert.True(t, b.Total.Equal(decimal.NewFromInt(300)))
	})
}

func TestQuote_PurchaseCap(t *testing.T) {
	t.Run("101 days flips to the flat purchase price", func(t *testing.T) {
		b := quoteAfterDays(t, 101, false)
		assert.True(t, b.CapApplied)
		assert.True(t, b.Total.Equal(decimal.NewFromFloat(24.99)), "total = %s", b.Total)
	})

	t.Run("110 days with discount rounds to cents", func(t *testing.T) {
		b := quoteAfterDays(t, 110, true)
		// 24.99 * 0.9 = 22.491 -> 22.49
		assert.True(t, b.Total.Equal(decimal.NewFromFloat(22.49)), "total = %s", b.Total)
	})

	t.Run("cap ignores tier rates entirely", func(t *testing.T) {
		rentedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		asOf := rentedAt.Add(150 * 24 * time.Hour)
		rates := Rates{TierOnePerDay: decimal.NewFromInt(1000), TierTwoPerDay: decimal.NewFromInt(1000)}
		b := Quote(rentedAt, asOf, rates, decimal.NewFromInt(10), false)
		assert.True(t, b.Total.Equal(decimal.NewFromInt(10)))
	})
}

func TestQuote_DayBoundaries(t *testing.T) {
	t.Run("partial days round up", func(t *testing.T) {
		rentedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		asOf := rentedAt.Add(30*24*time.Hour + time.Minute)
		b := Quote(rentedAt, asOf, standardRates(), decimal.NewFromInt(25), false)
		assert.Equal(t, 31, b.RentalDays)
		assert.True(t, b.TierOneCost.Equal(decimal.NewFromInt(6)))
	})

	t.Run("asOf before rentedAt is clamped", func(t *testing.T) {
		rentedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		b := Quote(rentedAt, rentedAt.Add(-48*time.Hour), standardRates(), decimal.NewFromInt(25), true)
		assert.Equal(t, 0, b.RentalDays)
		assert.True(t, b.Total.IsZero())
	})
}

func TestQuote_Pure(t *testing.T) {
	rentedAt := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	asOf := rentedAt.Add(77 * 24 * time.Hour)
	first := Quote(rentedAt, asOf, standardRates(), decimal.NewFromFloat(19.95), true)
	second := Quote(rentedAt, asOf, standardRates(), decimal.NewFromFloat(19.95), true)
	assert.Equal(t, first, second)
}
