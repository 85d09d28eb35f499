package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/tirudev/bookstack/internal/entities"
	"github.com/tirudev/bookstack/internal/mail"
)

// ReminderStore is the slice of the rentals repository the reminder
// processor needs.
type ReminderStore interface {
	GetByID(id uint) (*entities.RentedBook, error)
	MarkReminderSent(rentalID uint) error
}

// RentalReminderTask emails a renter that the free tier of their rental is
// about to end.
type RentalReminderTask struct {
	RentalID uint `json:"rental_id"`
}

// Config returns the queue configuration for rental reminder tasks.
func (t RentalReminderTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "rental_reminder",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RentalReminderProcessor creates a processor function for RentalReminderTask.
// It re-checks the rental before sending: a rental settled between enqueue
// and processing gets no email.
func RentalReminderProcessor(store ReminderStore, sender mail.Sender) backlite.QueueProcessor[RentalReminderTask] {
	return func(ctx context.Context, task RentalReminderTask) error {
		rental, err := store.GetByID(task.RentalID)
		if err != nil {
			return fmt.Errorf("load rental %d for reminder: %w", task.RentalID, err)
		}
		if rental.IsReturned || rental.ReminderSentAt != nil {
			return nil
		}

		subject := fmt.Sprintf("Your rental of %q starts billing soon", rental.Book.Title)
		body := fmt.Sprintf(
			"Hi %s,\n\nthe free period of your rental of %q is about to end. "+
				"Return the book or keep it and per-day charges will start accruing.",
			rental.User.Name, rental.Book.Title)

		if err := sender.Send(rental.User.Email, rental.User.Name, subject, body, ""); err != nil {
			return fmt.Errorf("send reminder for rental %d: %w", task.RentalID, err)
		}

		return store.MarkReminderSent(task.RentalID)
	}
}

// NewRentalReminderQueue creates a backlite queue for rental reminder tasks.
func NewRentalReminderQueue(store ReminderStore, sender mail.Sender) backlite.Queue {
	return backlite.NewQueue(RentalReminderProcessor(store, sender))
}
