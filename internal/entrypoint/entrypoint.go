package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tirudev/bookstack/internal/audit"
	"github.com/tirudev/bookstack/internal/auth"
	"github.com/tirudev/bookstack/internal/config"
	"github.com/tirudev/bookstack/internal/database"
	auditrepo "github.com/tirudev/bookstack/internal/database/audit"
	"github.com/tirudev/bookstack/internal/database/catalog"
	"github.com/tirudev/bookstack/internal/database/genres"
	"github.com/tirudev/bookstack/internal/database/libraries"
	"github.com/tirudev/bookstack/internal/database/payments"
	"github.com/tirudev/bookstack/internal/database/pricingconfig"
	"github.com/tirudev/bookstack/internal/database/rentals"
	"github.com/tirudev/bookstack/internal/database/sales"
	"github.com/tirudev/bookstack/internal/database/users"
	http_controllers "github.com/tirudev/bookstack/internal/http"
	"github.com/tirudev/bookstack/internal/mail"
	"github.com/tirudev/bookstack/internal/scheduler"
	"github.com/tirudev/bookstack/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting BookStack v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	catalogRepo := catalog.NewRepository(db.DB)
	rentalsRepo := rentals.NewRepository(db.DB)
	salesRepo := sales.NewRepository(db.DB)
	paymentsRepo := payments.NewRepository(db.DB)
	pricingRepo := pricingconfig.NewRepository(db.DB)
	librariesRepo := libraries.NewRepository(db.DB)
	genresRepo := genres.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)

	// Every quote needs the rate configuration, so refuse to start without it.
	if _, err := pricingRepo.Get(); err != nil {
		log.Fatalf("Pricing configuration missing, run '%s seed' first: %v", os.Args[0], err)
	}

	auditor := audit.NewService(auditrepo.NewRepository(db.DB))

	// Mail sender. Falls back to logging when no SendGrid key is configured.
	mailSender := mail.NewSender(cfg.Mail)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewNotifyBookAddedQueue(mailSender, cfg.Mail.CatalogNotify),
			tasks.NewRentalReminderQueue(rentalsRepo, mailSender),
			tasks.NewCleanupAuditEventsQueue(auditor),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Rental reminder scheduler rides on the task queue.
	var reminderScheduler *scheduler.RentalReminderScheduler
	if taskClient != nil {
		reminderScheduler = scheduler.NewRentalReminderScheduler(rentalsRepo, taskClient, cfg.Reminder)
		if err := reminderScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start reminder scheduler: %v", err)
		}
	}

	// Authentication
	authService := auth.NewService(db.DB, cfg.Auth)

	// Get underlying SQL DB for the session store
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	// Use the configured session secret for CSRF, or generate a throwaway one
	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	hasUsers, _ := authService.HasUsers()
	if !hasUsers {
		log.Printf("No users found. Run '%s seed' or POST /api/auth/register to create accounts.", os.Args[0])
	}

	// New-book notifications go through the task queue when it is running
	var bookNotifier http_controllers.BookAddedNotifier
	if taskClient != nil {
		bookNotifier = tasks.NewBookAddedEnqueuer(taskClient)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:          db,
		Auditor:           auditor,
		Catalog:           catalogRepo,
		Rentals:           rentalsRepo,
		Sales:             salesRepo,
		Payments:          paymentsRepo,
		PricingConfig:     pricingRepo,
		Libraries:         librariesRepo,
		Genres:            genresRepo,
		Users:             usersRepo,
		AuthService:       authService,
		AuthMiddleware:    authMiddleware,
		SessionManager:    sessionManager,
		AuthConfig:        cfg.Auth,
		CSRFSecret:        csrfSecret,
		BookAddedNotifier: bookNotifier,
		Version:           version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if reminderScheduler != nil {
			reminderScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
