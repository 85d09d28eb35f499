package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/tirudev/bookstack/internal/entities"
	"github.com/tirudev/bookstack/internal/mail"
)

// NotifyBookAddedTask emails a configured recipient when a book joins the
// catalog. The book details ride in the task payload so the processor does
// not depend on the book still existing.
type NotifyBookAddedTask struct {
	BookID uint   `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Config returns the queue configuration for catalog notification tasks.
func (t NotifyBookAddedTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "notify_book_added",
		MaxAttempts: 3,
		Backoff:     1 * time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// NotifyBookAddedProcessor creates a processor function for NotifyBookAddedTask.
func NotifyBookAddedProcessor(sender mail.Sender, recipient string) backlite.QueueProcessor[NotifyBookAddedTask] {
	return func(ctx context.Context, task NotifyBookAddedTask) error {
		if recipient == "" {
			log.Printf("[TASK] No catalog notification recipient configured, skipping book %d", task.BookID)
			return nil
		}

		subject := fmt.Sprintf("New book in the catalog: %s", task.Title)
		body := fmt.Sprintf("%q by %s was just added to the catalog.", task.Title, task.Author)

		if err := sender.Send(recipient, "", subject, body, ""); err != nil {
			return fmt.Errorf("notify book %d added: %w", task.BookID, err)
		}

		return nil
	}
}

// NewNotifyBookAddedQueue creates a backlite queue for catalog notification tasks.
func NewNotifyBookAddedQueue(sender mail.Sender, recipient string) backlite.Queue {
	return backlite.NewQueue(NotifyBookAddedProcessor(sender, recipient))
}

// BookAddedEnqueuer enqueues catalog notification tasks. It satisfies the
// notifier interface the catalog controller expects.
type BookAddedEnqueuer struct {
	client *Client
}

// NewBookAddedEnqueuer creates an enqueuer on top of the task client.
func NewBookAddedEnqueuer(client *Client) *BookAddedEnqueuer {
	return &BookAddedEnqueuer{client: client}
}

// NotifyBookAdded enqueues a notification for a freshly created book.
func (e *BookAddedEnqueuer) NotifyBookAdded(book *entities.Book) error {
	_, err := e.client.Add(NotifyBookAddedTask{
		BookID: book.ID,
		Title:  book.Title,
		Author: book.Author,
	}).Save()
	return err
}
