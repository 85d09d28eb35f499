// Package scheduler runs cron jobs. The rental reminder job finds active
// rentals whose free tier is about to end and enqueues reminder email tasks.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tirudev/bookstack/internal/config"
	"github.com/tirudev/bookstack/internal/database/rentals"
	"github.com/tirudev/bookstack/internal/pricing"
	"github.com/tirudev/bookstack/internal/tasks"
)

// RentalReminderScheduler periodically scans for rentals nearing the end of
// the free tier and enqueues one reminder task per rental. Sending and the
// sent-once guarantee live in the task processor.
type RentalReminderScheduler struct {
	rentals    *rentals.Repository
	taskClient *tasks.Client
	config     config.Reminder

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewRentalReminderScheduler creates a new scheduler instance.
func NewRentalReminderScheduler(rentalsRepo *rentals.Repository, taskClient *tasks.Client, cfg config.Reminder) *RentalReminderScheduler {
	return &RentalReminderScheduler{
		rentals:    rentalsRepo,
		taskClient: taskClient,
		config:     cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if reminders are enabled.
func (s *RentalReminderScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Rental reminder scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runScan()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder job with %q: %w", s.config.Schedule, err)
	}
	s.entryID = entryID

	// Audit retention cleanup rides on the same daily schedule.
	_, err = s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.taskClient.Add(tasks.CleanupAuditEventsTask{}).Save(); err != nil {
			log.Printf("Failed to enqueue audit cleanup: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup job: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Rental reminder scheduler: started with schedule %q, lead of %d days",
		s.config.Schedule, s.config.LeadDays)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *RentalReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Rental reminder scheduler: stopped")
}

// RunNow triggers an immediate scan.
func (s *RentalReminderScheduler) RunNow() {
	go s.runScan()
}

// runScan enqueues a reminder for every active rental old enough that its
// free tier ends within the configured lead time.
func (s *RentalReminderScheduler) runScan() {
	leadDays := s.config.LeadDays
	if leadDays < 0 {
		leadDays = 0
	}

	ageDays := pricing.FreeDays - leadDays
	cutoff := time.Now().Add(-time.Duration(ageDays) * 24 * time.Hour)

	due, err := s.rentals.ListActiveOlderThan(cutoff)
	if err != nil {
		log.Printf("Rental reminder scan failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	enqueued := 0
	for _, rental := range due {
		_, err := s.taskClient.Add(tasks.RentalReminderTask{RentalID: rental.ID}).Save()
		if err != nil {
			log.Printf("Failed to enqueue reminder for rental %d: %v", rental.ID, err)
			continue
		}
		enqueued++
	}

	log.Printf("Rental reminder scan: enqueued %d of %d due rentals", enqueued, len(due))
}
