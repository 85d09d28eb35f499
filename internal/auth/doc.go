// Package auth provides authentication and authorization for the application.
//
// All API access requires a session cookie obtained through /api/auth/login.
// Accounts carry one of three roles:
//   - "customer": can browse the catalog, rent and purchase books
//   - "librarian": manages the catalog of their assigned library
//   - "admin": manages libraries, librarians, genres and pricing
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5           # Failed attempts before lockout
//	AUTH_LOCKOUT_DURATION=30m           # Lockout length
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	authService := auth.NewService(db, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager)
//	router.Use(authMiddleware.Handler())
//
// Extract the caller in handlers:
//
//	userID := auth.GetUserID(c)
//	role := auth.GetUserRole(c)
package auth
