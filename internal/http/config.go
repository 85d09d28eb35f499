package http

import (
	"github.com/tirudev/bookstack/internal/audit"
	"github.com/tirudev/bookstack/internal/auth"
	"github.com/tirudev/bookstack/internal/config"
	"github.com/tirudev/bookstack/internal/database"
	"github.com/tirudev/bookstack/internal/database/catalog"
	"github.com/tirudev/bookstack/internal/database/genres"
	"github.com/tirudev/bookstack/internal/database/libraries"
	"github.com/tirudev/bookstack/internal/database/payments"
	"github.com/tirudev/bookstack/internal/database/pricingconfig"
	"github.com/tirudev/bookstack/internal/database/rentals"
	"github.com/tirudev/bookstack/internal/database/sales"
	"github.com/tirudev/bookstack/internal/database/users"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Auditor  *audit.Service

	// Repositories
	Catalog       *catalog.Repository
	Rentals       *rentals.Repository
	Sales         *sales.Repository
	Payments      *payments.Repository
	PricingConfig *pricingconfig.Repository
	Libraries     *libraries.Repository
	Genres        *genres.Repository
	Users         *users.Repository

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte

	// Catalog notifications (optional, backed by the task queue)
	BookAddedNotifier BookAddedNotifier

	// Application info
	Version string
}
