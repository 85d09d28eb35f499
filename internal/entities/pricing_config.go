package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingConfig is the singleton record holding the two per-day rental
// rates. Exactly one row must exist; its absence is a deployment defect and
// every pricing operation fails without it.
type PricingConfig struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	TierOneRatePerDay decimal.Decimal `gorm:"type:decimal(10,2)" json:"tier_one_rate_per_day"`
	TierTwoRatePerDay decimal.Decimal `gorm:"type:decimal(10,2)" json:"tier_two_rate_per_day"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (PricingConfig) TableName() string {
	return "pricing_configs"
}
