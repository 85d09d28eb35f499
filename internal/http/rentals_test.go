package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirudev/bookstack/internal/auth"
	"github.com/tirudev/bookstack/internal/database"
	"github.com/tirudev/bookstack/internal/database/pricingconfig"
	"github.com/tirudev/bookstack/internal/database/rentals"
	"github.com/tirudev/bookstack/internal/database/users"
	"github.com/tirudev/bookstack/internal/entities"
)

type rentalsTestEnv struct {
	db       *database.Database
	rentals  *rentals.Repository
	router   *gin.Engine
	customer *entities.User
	book     *entities.Book
}

// asUser sets auth context the way the session middleware would.
func asUser(user *entities.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, user.ID)
		c.Set(auth.ContextKeyEmail, user.Email)
		c.Set(auth.ContextKeyRole, user.Role)
		c.Next()
	}
}

func setupRentalsTest(t *testing.T) (*rentalsTestEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_rentals_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	customer := &entities.User{
		Name:   "Renting Customer",
		Email:  "renter@example.com",
		Role:   entities.UserRoleCustomer,
		Status: entities.AccountStatusActive,
	}
	require.NoError(t, db.DB.Create(customer).Error)

	library := &entities.Library{Name: "Test Library"}
	require.NoError(t, db.DB.Create(library).Error)

	genre := &entities.Genre{Name: "Test Fiction"}
	require.NoError(t, db.DB.Create(genre).Error)

	book := &entities.Book{
		Title:          "The Priced Tome",
		Author:         "A. Author",
		PurchaseAmount: decimal.RequireFromString("24.99"),
		GenreID:        genre.ID,
		LibraryID:      library.ID,
	}
	require.NoError(t, db.DB.Create(book).Error)

	pricingRepo := pricingconfig.NewRepository(db.DB)
	_, err = pricingRepo.Create(decimal.RequireFromString("6.00"), decimal.RequireFromString("3.00"))
	require.NoError(t, err)

	rentalsRepo := rentals.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	controller := NewRentalsController(rentalsRepo, pricingRepo, usersRepo, nil)

	router := gin.New()
	router.Use(asUser(customer))
	router.POST("/api/books/:id/rent", controller.RentBook)
	router.GET("/api/rentals", controller.ListRentals)
	router.GET("/api/rentals/:id", controller.GetRental)
	router.GET("/api/rentals/:id/quote", controller.QuoteRental)
	router.POST("/api/rentals/:id/payment", controller.SettleRental)

	env := &rentalsTestEnv{
		db:       db,
		rentals:  rentalsRepo,
		router:   router,
		customer: customer,
		book:     book,
	}
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

// backdateRental shifts a rental's start into the past.
func backdateRental(t *testing.T, env *rentalsTestEnv, rentalID uint, days int) {
	t.Helper()
	start := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	err := env.db.DB.Model(&entities.RentedBook{}).
		Where("id = ?", rentalID).
		Update("created_at", start).Error
	require.NoError(t, err)
}

func TestRentalsController_RentBook(t *testing.T) {
	t.Run("opens a rental", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/books/%d/rent", env.book.ID), nil)
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var rental entities.RentedBook
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rental))
		assert.Equal(t, env.book.ID, rental.BookID)
		assert.Equal(t, env.customer.ID, rental.UserID)
		assert.False(t, rental.IsReturned)
		assert.Nil(t, rental.ReturnDate)
	})

	t.Run("404 for an unknown book", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/9999/rent", nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRentalsController_QuoteRental(t *testing.T) {
	t.Run("free tier quotes zero", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		rental, err := env.rentals.Create(env.book.ID, env.customer.ID)
		require.NoError(t, err)
		backdateRental(t, env, rental.ID, 10)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/rentals/%d/quote", rental.ID), nil)
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var quote QuoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
		assert.True(t, quote.Breakdown.Total.IsZero())
		assert.False(t, quote.Settled)
		assert.False(t, quote.LoyaltyDiscounted)
	})

	t.Run("tier one pricing after 45 days", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		rental, err := env.rentals.Create(env.book.ID, env.customer.ID)
		require.NoError(t, err)
		backdateRental(t, env, rental.ID, 45)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/rentals/%d/quote", rental.ID), nil)
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var quote QuoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
		// 15 billable days at 6.00
		assert.True(t, quote.Breakdown.Total.Equal(decimal.RequireFromString("90.00")),
			"got %s", quote.Breakdown.Total)
	})

	t.Run("long rental is capped at the purchase price", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		rental, err := env.rentals.Create(env.book.ID, env.customer.ID)
		require.NoError(t, err)
		backdateRental(t, env, rental.ID, 120)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/rentals/%d/quote", rental.ID), nil)
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var quote QuoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
		assert.True(t, quote.Breakdown.CapApplied)
		assert.True(t, quote.Breakdown.Total.Equal(decimal.RequireFromString("24.99")),
			"got %s", quote.Breakdown.Total)
	})
}

func TestRentalsController_SettleRental(t *testing.T) {
	settle := func(env *rentalsTestEnv, rentalID uint, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/rentals/%d/payment", rentalID),
			bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)
		return w
	}

	t.Run("settles and records the payment", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		rental, err := env.rentals.Create(env.book.ID, env.customer.ID)
		require.NoError(t, err)
		backdateRental(t, env, rental.ID, 45)

		w := settle(env, rental.ID, `{"payment_method":"credit_card"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var settled entities.RentedBook
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settled))
		assert.True(t, settled.IsReturned)
		require.NotNil(t, settled.ReturnDate)
		require.NotNil(t, settled.Payment)
		assert.True(t, settled.Payment.Amount.Equal(decimal.RequireFromString("90.00")),
			"got %s", settled.Payment.Amount)
		assert.Equal(t, entities.PaymentTypeRent, settled.Payment.Type)
	})

	t.Run("second settlement gets 409", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		rental, err := env.rentals.Create(env.book.ID, env.customer.ID)
		require.NoError(t, err)

		w := settle(env, rental.ID, `{"payment_method":"credit_card"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = settle(env, rental.ID, `{"payment_method":"credit_card"}`)
		assert.Equal(t, http.StatusConflict, w.Code)

		// Still exactly one payment for the rental
		var count int64
		env.db.DB.Model(&entities.Payment{}).Where("rented_book_id = ?", rental.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rejects an unknown payment method", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		rental, err := env.rentals.Create(env.book.ID, env.customer.ID)
		require.NoError(t, err)

		w := settle(env, rental.ID, `{"payment_method":"cash"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a stale amount echo", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		rental, err := env.rentals.Create(env.book.ID, env.customer.ID)
		require.NoError(t, err)
		backdateRental(t, env, rental.ID, 45) // server computes 90.00

		w := settle(env, rental.ID, `{"payment_method":"credit_card","amount":"45.00"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("accepts a matching amount echo", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		rental, err := env.rentals.Create(env.book.ID, env.customer.ID)
		require.NoError(t, err)
		backdateRental(t, env, rental.ID, 45)

		w := settle(env, rental.ID, `{"payment_method":"debit_card","amount":"90.00"}`)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("applies the loyalty discount on the second rental", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		// First rental settles inside the free tier for zero
		first, err := env.rentals.Create(env.book.ID, env.customer.ID)
		require.NoError(t, err)
		w := settle(env, first.ID, `{"payment_method":"credit_card"}`)
		require.Equal(t, http.StatusOK, w.Code)

		second, err := env.rentals.Create(env.book.ID, env.customer.ID)
		require.NoError(t, err)
		backdateRental(t, env, second.ID, 45)

		w = settle(env, second.ID, `{"payment_method":"credit_card"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var settled entities.RentedBook
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settled))
		require.NotNil(t, settled.Payment)
		// 90.00 less the 10% loyalty discount
		assert.True(t, settled.Payment.Amount.Equal(decimal.RequireFromString("81.00")),
			"got %s", settled.Payment.Amount)
	})
}

func TestRentalsController_Ownership(t *testing.T) {
	t.Run("customers cannot see another customer's rental", func(t *testing.T) {
		env, cleanup := setupRentalsTest(t)
		defer cleanup()

		other := &entities.User{
			Name:   "Other Customer",
			Email:  "other@example.com",
			Role:   entities.UserRoleCustomer,
			Status: entities.AccountStatusActive,
		}
		require.NoError(t, env.db.DB.Create(other).Error)

		rental, err := env.rentals.Create(env.book.ID, other.ID)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/rentals/%d", rental.ID), nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
