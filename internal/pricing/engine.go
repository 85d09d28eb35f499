// Package pricing computes rental charges. Quote is a pure function so the
// same code prices an in-progress rental for preview and a completed rental
// at settlement.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Day-range bands for rental pricing.
const (
	// FreeDays is the length of the free tier at the start of every rental.
	FreeDays = 30

	// TierOneEndDay is the last day billed at the tier-one rate.
	TierOneEndDay = 60

	// CapAfterDays is the day count past which the accumulated per-day cost
	// is discarded and the rental is billed at the book's flat purchase
	// price instead.
	CapAfterDays = 100
)

// loyaltyDiscount is the multiplier applied when the loyalty discount is in
// effect (a flat 10% off).
var loyaltyDiscount = decimal.NewFromFloat(0.9)

// Rates holds the two global per-day rates from the pricing configuration.
type Rates struct {
	TierOnePerDay decimal.Decimal // days 31-60
	TierTwoPerDay decimal.Decimal // days 61+
}

// Breakdown is the itemised result of pricing a rental. All amounts are
// rounded to cents and never negative.
type Breakdown struct {
	RentalDays  int             `json:"rental_days"`
	FreeDays    int             `json:"free_days"`
	TierOneCost decimal.Decimal `json:"tier_one_cost"`
	TierTwoCost decimal.Decimal `json:"tier_two_cost"`
	CapApplied  bool            `json:"cap_applied"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// Quote prices a rental held from rentedAt until asOf. Pass the return date
// as asOf for a settled rental, or the current time for a preview. asOf
// values before rentedAt are clamped, so a quote is never negative.
//
// Days are counted in 24h buckets, rounded up, so any part of a day counts
// as a whole day. The first 30 days are free, days 31-60 bill at the
// tier-one rate, days 61+ at the tier-two rate. Past 100 days the per-day
// costs are discarded and the flat purchasePrice is billed instead. When
// applyLoyaltyDiscount is set and the subtotal is positive, 10% comes off
// the total (the cap amount included).
func Quote(rentedAt, asOf time.Time, rates Rates, purchasePrice decimal.Decimal, applyLoyaltyDiscount bool) Breakdown {
	if asOf.Before(rentedAt) {
		asOf = rentedAt
	}

	days := rentalDays(rentedAt, asOf)

	freeDays := days
	if freeDays > FreeDays {
		freeDays = FreeDays
	}

	tierOneDays := days - FreeDays
	if tierOneDays < 0 {
		tierOneDays = 0
	}
	if tierOneDays > TierOneEndDay-FreeDays {
		tierOneDays = TierOneEndDay - FreeDays
	}

	tierTwoDays := days - TierOneEndDay
	if tierTwoDays < 0 {
		tierTwoDays = 0
	}

	tierOneCost := rates.TierOnePerDay.Mul(decimal.NewFromInt(int64(tierOneDays))).Round(2)
	tierTwoCost := rates.TierTwoPerDay.Mul(decimal.NewFromInt(int64(tierTwoDays))).Round(2)

	capApplied := days > CapAfterDays
	subtotal := tierOneCost.Add(tierTwoCost)
	if capApplied {
		subtotal = purchasePrice
	}

	total := subtotal
	discount := decimal.Zero
	if applyLoyaltyDiscount && subtotal.IsPositive() {
		total = subtotal.Mul(loyaltyDiscount)
		discount = subtotal.Sub(total)
	}

	return Breakdown{
		RentalDays:  days,
		FreeDays:    freeDays,
		TierOneCost: tierOneCost,
		TierTwoCost: tierTwoCost,
		CapApplied:  capApplied,
		Discount:    discount.Round(2),
		Total:       total.Round(2),
	}
}

// rentalDays counts elapsed 24h buckets between from and to, rounding up.
func rentalDays(from, to time.Time) int {
	elapsed := to.Sub(from)
	if elapsed <= 0 {
		return 0
	}
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) != 0 {
		days++
	}
	return days
}
