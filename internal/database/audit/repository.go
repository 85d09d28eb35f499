// Package audit provides database operations for audit events.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/tirudev/bookstack/internal/entities"
)

// Repository handles audit event persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new audit repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists an audit event.
func (r *Repository) Create(event *entities.AuditEvent) error {
	return r.db.Create(event).Error
}

// ListRecent returns the most recent events, newest first.
func (r *Repository) ListRecent(limit int) ([]entities.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []entities.AuditEvent
	err := r.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// ListByUser returns a user's events, newest first.
func (r *Repository) ListByUser(userID uint, limit int) ([]entities.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []entities.AuditEvent
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// DeleteOldEvents removes events older than the retention period and
// returns the number deleted.
func (r *Repository) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
