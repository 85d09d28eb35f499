package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tirudev/bookstack/internal/audit"
	"github.com/tirudev/bookstack/internal/database/pricingconfig"
)

// PricingConfigController handles the global rental rate configuration.
type PricingConfigController struct {
	pricing *pricingconfig.Repository
	auditor *audit.Service
}

// NewPricingConfigController creates a new pricing config controller.
func NewPricingConfigController(pricingRepo *pricingconfig.Repository, auditor *audit.Service) *PricingConfigController {
	return &PricingConfigController{
		pricing: pricingRepo,
		auditor: auditor,
	}
}

// GetPricingConfig returns the current rental rates.
func (pc *PricingConfigController) GetPricingConfig(c *gin.Context) {
	cfg, err := pc.pricing.Get()
	if err != nil {
		// A missing config row is a deployment defect, not a user error
		respondInternalError(c, err, "get pricing config")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type pricingConfigRequest struct {
	TierOneRatePerDay decimal.Decimal `json:"tier_one_rate_per_day"`
	TierTwoRatePerDay decimal.Decimal `json:"tier_two_rate_per_day"`
}

// UpdatePricingConfig replaces the rental rates. Takes effect for every
// quote and settlement from this moment on; already-recorded payments are
// untouched.
func (pc *PricingConfigController) UpdatePricingConfig(c *gin.Context) {
	var req pricingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "tier_one_rate_per_day and tier_two_rate_per_day are required")
		return
	}

	cfg, err := pc.pricing.Update(req.TierOneRatePerDay, req.TierTwoRatePerDay)
	if err != nil {
		switch {
		case errors.Is(err, pricingconfig.ErrNegativeRate):
			respondBadRequest(c, "rates cannot be negative")
		case errors.Is(err, pricingconfig.ErrConfigMissing):
			respondInternalError(c, err, "update pricing config")
		default:
			respondInternalError(c, err, "update pricing config")
		}
		return
	}

	if pc.auditor != nil {
		pc.auditor.LogConfigUpdate(GetUserID(c), cfg.TierOneRatePerDay, cfg.TierTwoRatePerDay)
	}

	c.JSON(http.StatusOK, cfg)
}
