package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tirudev/bookstack/internal/audit"
)

const defaultAuditLimit = 100

// AuditController exposes recent audit events to admins.
type AuditController struct {
	auditor *audit.Service
}

// NewAuditController creates a new audit controller.
func NewAuditController(auditor *audit.Service) *AuditController {
	return &AuditController{auditor: auditor}
}

// ListEvents returns the most recent audit events, optionally filtered to
// one user via ?user_id=.
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit := defaultAuditLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, ok := parseQueryUint(c, "user_id", userIDStr)
		if !ok {
			return
		}
		events, err := ac.auditor.EventsForUser(userID, limit)
		if err != nil {
			respondInternalError(c, err, "list audit events")
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
		return
	}

	events, err := ac.auditor.RecentEvents(limit)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
