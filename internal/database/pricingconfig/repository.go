// Package pricingconfig provides access to the singleton pricing
// configuration row.
package pricingconfig

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tirudev/bookstack/internal/entities"
)

// ErrConfigMissing means no pricing configuration row exists. This is a
// deployment/seeding defect, not a user error: nothing can be priced
// without the configuration.
var ErrConfigMissing = errors.New("pricing configuration not found")

var ErrNegativeRate = errors.New("rental rates must be non-negative")

// Repository handles pricing configuration access.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new pricing configuration repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the singleton configuration row, or ErrConfigMissing when
// none exists.
func (r *Repository) Get() (*entities.PricingConfig, error) {
	var cfg entities.PricingConfig
	err := r.db.Order("id").First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigMissing
		}
		return nil, err
	}
	return &cfg, nil
}

// Update overwrites the singleton row's two rates in place. No history of
// previous rates is kept.
func (r *Repository) Update(tierOne, tierTwo decimal.Decimal) (*entities.PricingConfig, error) {
	if tierOne.IsNegative() || tierTwo.IsNegative() {
		return nil, ErrNegativeRate
	}

	cfg, err := r.Get()
	if err != nil {
		return nil, err
	}

	err = r.db.Model(cfg).Updates(map[string]any{
		"tier_one_rate_per_day": tierOne,
		"tier_two_rate_per_day": tierTwo,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update pricing config: %w", err)
	}

	cfg.TierOneRatePerDay = tierOne
	cfg.TierTwoRatePerDay = tierTwo
	return cfg, nil
}

// Create inserts the singleton row. It fails if one already exists.
func (r *Repository) Create(tierOne, tierTwo decimal.Decimal) (*entities.PricingConfig, error) {
	if tierOne.IsNegative() || tierTwo.IsNegative() {
		return nil, ErrNegativeRate
	}

	if _, err := r.Get(); err == nil {
		return nil, errors.New("pricing configuration already exists")
	} else if !errors.Is(err, ErrConfigMissing) {
		return nil, err
	}

	cfg := entities.PricingConfig{
		TierOneRatePerDay: tierOne,
		TierTwoRatePerDay: tierTwo,
	}
	if err := r.db.Create(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}
