// Package audit provides high-level audit logging for money-moving and
// administrative operations.
package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tirudev/bookstack/internal/database/audit"
	"github.com/tirudev/bookstack/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.Create(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.Create(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogRental records the start of a rental.
func (s *Service) LogRental(userID, rentalID, bookID uint) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventRental,
		Action:      "rental_started",
		Description: "Rented a book",
		EntityType:  "rental",
		EntityID:    &rentalID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{"book_id": bookID}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogSettlement records a rental settlement attempt, successful or not.
func (s *Service) LogSettlement(userID, rentalID uint, amount decimal.Decimal, discounted bool, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSettlement,
		Action:      "rental_settled",
		Description: "Settled rental for " + amount.StringFixed(2),
		EntityType:  "rental",
		EntityID:    &rentalID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"amount":     amount.StringFixed(2),
		"discounted": discounted,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogSale records a book purchase.
func (s *Service) LogSale(userID, saleID, bookID uint, amount decimal.Decimal) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSale,
		Action:      "book_purchased",
		Description: "Purchased a book for " + amount.StringFixed(2),
		EntityType:  "sale",
		EntityID:    &saleID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"book_id": bookID,
		"amount":  amount.StringFixed(2),
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogConfigUpdate records a pricing configuration change.
func (s *Service) LogConfigUpdate(userID uint, tierOne, tierTwo decimal.Decimal) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventConfig,
		Action:      "pricing_config_updated",
		Description: "Updated rental rates",
		EntityType:  "pricing_config",
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"tier_one_rate_per_day": tierOne.StringFixed(2),
		"tier_two_rate_per_day": tierTwo.StringFixed(2),
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogAccountChange records an administrative change to a user account.
func (s *Service) LogAccountChange(actorID, targetID uint, action, description string) {
	event := &entities.AuditEvent{
		UserID:      actorID,
		EventType:   entities.AuditEventAccount,
		Action:      action,
		Description: description,
		EntityType:  "user",
		EntityID:    &targetID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// RecentEvents retrieves the most recent audit events.
func (s *Service) RecentEvents(limit int) ([]entities.AuditEvent, error) {
	return s.repo.ListRecent(limit)
}

// EventsForUser retrieves the most recent audit events for one user.
func (s *Service) EventsForUser(userID uint, limit int) ([]entities.AuditEvent, error) {
	return s.repo.ListByUser(userID, limit)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(retention)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
