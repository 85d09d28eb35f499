package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tirudev/bookstack/internal/auth"
	"github.com/tirudev/bookstack/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Auth endpoints (login, register, logout, me)
	if cfg.AuthService != nil {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig, cfg.Auditor)
		authController.RegisterRoutes(router)
	}

	catalogController := NewCatalogController(cfg.Catalog, cfg.Users, cfg.BookAddedNotifier)
	rentalsController := NewRentalsController(cfg.Rentals, cfg.PricingConfig, cfg.Users, cfg.Auditor)
	purchasesController := NewPurchasesController(cfg.Sales, cfg.Catalog, cfg.Users, cfg.Auditor)
	invoicesController := NewInvoicesController(cfg.Payments)
	librariesController := NewLibrariesController(cfg.Libraries, cfg.Auditor)
	genresController := NewGenresController(cfg.Genres)
	librariansController := NewLibrariansController(cfg.Users, cfg.AuthService, cfg.Auditor)
	pricingController := NewPricingConfigController(cfg.PricingConfig, cfg.Auditor)

	requireRole := func(roles ...entities.UserRole) gin.HandlerFunc {
		if cfg.AuthMiddleware == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return cfg.AuthMiddleware.RequireRole(roles...)
	}

	staff := []entities.UserRole{entities.UserRoleAdmin, entities.UserRoleLibrarian}

	// Catalog browsing (any authenticated user)
	router.GET("/api/books", catalogController.ListBooks)
	router.GET("/api/books/search", catalogController.SearchBooks)
	router.GET("/api/books/purchased", catalogController.ListPurchasedBooks)
	router.GET("/api/books/:id", catalogController.GetBook)
	router.GET("/api/genres", genresController.ListGenres)
	router.GET("/api/libraries", librariesController.ListLibraries)
	router.GET("/api/libraries/:id", librariesController.GetLibrary)

	// Catalog management (staff)
	router.POST("/api/books", requireRole(staff...), catalogController.CreateBook)
	router.PATCH("/api/books/:id", requireRole(staff...), catalogController.UpdateBook)
	router.DELETE("/api/books/:id", requireRole(staff...), catalogController.DeleteBook)

	// Rental lifecycle
	router.POST("/api/books/:id/rent", requireRole(entities.UserRoleCustomer), rentalsController.RentBook)
	router.GET("/api/rentals", rentalsController.ListRentals)
	router.GET("/api/rentals/:id", rentalsController.GetRental)
	router.GET("/api/rentals/:id/quote", rentalsController.QuoteRental)
	router.POST("/api/rentals/:id/payment", requireRole(entities.UserRoleCustomer), rentalsController.SettleRental)

	// Sales
	router.POST("/api/books/:id/purchase", requireRole(entities.UserRoleCustomer), purchasesController.PurchaseBook)
	router.GET("/api/purchases", purchasesController.ListPurchases)

	// Payment history
	router.GET("/api/invoices", invoicesController.ListInvoices)

	// Pricing configuration
	router.GET("/api/pricing-config", pricingController.GetPricingConfig)
	router.PUT("/api/pricing-config", requireRole(entities.UserRoleAdmin), pricingController.UpdatePricingConfig)

	// Administration
	admin := router.Group("/api/admin", requireRole(entities.UserRoleAdmin))
	{
		admin.POST("/libraries", librariesController.CreateLibrary)
		admin.PATCH("/libraries/:id", librariesController.UpdateLibrary)
		admin.DELETE("/libraries/:id", librariesController.DeleteLibrary)

		admin.POST("/genres", genresController.CreateGenre)
		admin.PATCH("/genres/:id", genresController.RenameGenre)
		admin.DELETE("/genres/:id", genresController.DeleteGenre)

		admin.GET("/librarians", librariansController.ListLibrarians)
		admin.GET("/librarians/unassigned", librariansController.ListUnassignedLibrarians)
		admin.POST("/librarians", librariansController.CreateLibrarian)
		admin.POST("/librarians/:id/library", librariansController.AssignLibrary)
		admin.POST("/users/:id/status", librariansController.SetUserStatus)

		if cfg.Auditor != nil {
			auditController := NewAuditController(cfg.Auditor)
			admin.GET("/audit/events", auditController.ListEvents)
		}
	}

	return router
}
