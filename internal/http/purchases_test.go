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

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirudev/bookstack/internal/database"
	"github.com/tirudev/bookstack/internal/database/catalog"
	"github.com/tirudev/bookstack/internal/database/payments"
	"github.com/tirudev/bookstack/internal/database/sales"
	"github.com/tirudev/bookstack/internal/database/users"
	"github.com/tirudev/bookstack/internal/entities"
)

func setupPurchasesTest(t *testing.T) (*database.Database, *gin.Engine, *entities.User, *entities.Book, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_purchases_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	customer := &entities.User{
		Name:   "Buying Customer",
		Email:  "buyer@example.com",
		Role:   entities.UserRoleCustomer,
		Status: entities.AccountStatusActive,
	}
	require.NoError(t, db.DB.Create(customer).Error)

	library := &entities.Library{Name: "Sales Library"}
	require.NoError(t, db.DB.Create(library).Error)
	genre := &entities.Genre{Name: "Sales Fiction"}
	require.NoError(t, db.DB.Create(genre).Error)

	book := &entities.Book{
		Title:          "Buy Me",
		Author:         "B. Seller",
		PurchaseAmount: decimal.RequireFromString("19.50"),
		GenreID:        genre.ID,
		LibraryID:      library.ID,
	}
	require.NoError(t, db.DB.Create(book).Error)

	salesRepo := sales.NewRepository(db.DB)
	catalogRepo := catalog.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	paymentsRepo := payments.NewRepository(db.DB)

	purchases := NewPurchasesController(salesRepo, catalogRepo, usersRepo, nil)
	invoices := NewInvoicesController(paymentsRepo)

	router := gin.New()
	router.Use(asUser(customer))
	router.POST("/api/books/:id/purchase", purchases.PurchaseBook)
	router.GET("/api/purchases", purchases.ListPurchases)
	router.GET("/api/invoices", invoices.ListInvoices)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, router, customer, book, cleanup
}

func TestPurchasesController_PurchaseBook(t *testing.T) {
	t.Run("records the sale at the listed price", func(t *testing.T) {
		db, router, customer, book, cleanup := setupPurchasesTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/books/%d/purchase", book.ID),
			bytes.NewBufferString(`{"payment_method":"debit_card"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var sale entities.BookSale
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
		assert.Equal(t, book.ID, sale.BookID)
		assert.Equal(t, customer.ID, sale.UserID)

		var payment entities.Payment
		require.NoError(t, db.DB.Where("book_sale_id = ?", sale.ID).First(&payment).Error)
		assert.True(t, payment.Amount.Equal(decimal.RequireFromString("19.50")),
			"got %s", payment.Amount)
		assert.Equal(t, entities.PaymentTypePurchase, payment.Type)
	})

	t.Run("rejects an unknown payment method", func(t *testing.T) {
		_, router, _, book, cleanup := setupPurchasesTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/books/%d/purchase", book.ID),
			bytes.NewBufferString(`{"payment_method":"barter"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("404 for an unknown book", func(t *testing.T) {
		_, router, _, _, cleanup := setupPurchasesTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/9999/purchase",
			bytes.NewBufferString(`{"payment_method":"credit_card"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestInvoicesController_ListInvoices(t *testing.T) {
	t.Run("purchase payments appear immediately", func(t *testing.T) {
		_, router, _, book, cleanup := setupPurchasesTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/books/%d/purchase", book.ID),
			bytes.NewBufferString(`{"payment_method":"credit_card"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/invoices", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Invoices []entities.Payment `json:"invoices"`
			Count    int                `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("unsettled rental payments stay hidden", func(t *testing.T) {
		db, router, customer, book, cleanup := setupPurchasesTest(t)
		defer cleanup()

		rental := &entities.RentedBook{BookID: book.ID, UserID: customer.ID}
		require.NoError(t, db.DB.Create(rental).Error)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/invoices", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Count)
	})
}
