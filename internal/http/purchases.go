package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tirudev/bookstack/internal/audit"
	"github.com/tirudev/bookstack/internal/auth"
	"github.com/tirudev/bookstack/internal/database/catalog"
	"github.com/tirudev/bookstack/internal/database/sales"
	"github.com/tirudev/bookstack/internal/database/users"
	"github.com/tirudev/bookstack/internal/entities"
)

// PurchasesController handles book sales.
type PurchasesController struct {
	sales   *sales.Repository
	catalog *catalog.Repository
	users   *users.Repository
	auditor *audit.Service
}

// NewPurchasesController creates a new purchases controller.
func NewPurchasesController(salesRepo *sales.Repository, catalogRepo *catalog.Repository, usersRepo *users.Repository, auditor *audit.Service) *PurchasesController {
	return &PurchasesController{
		sales:   salesRepo,
		catalog: catalogRepo,
		users:   usersRepo,
		auditor: auditor,
	}
}

type purchaseRequest struct {
	PaymentMethod entities.PaymentMethod `json:"payment_method" binding:"required"`
}

// PurchaseBook buys a book at its listed purchase price. The price is read
// server-side; the client never supplies an amount.
func (pc *PurchasesController) PurchaseBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "payment_method is required")
		return
	}
	if !req.PaymentMethod.Valid() {
		respondBadRequest(c, "payment_method must be credit_card or debit_card")
		return
	}

	book, err := pc.catalog.GetBookByID(bookID)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
		} else {
			respondInternalError(c, err, "load book")
		}
		return
	}

	userID := GetUserID(c)
	sale, err := pc.sales.Record(book.ID, userID, book.PurchaseAmount, req.PaymentMethod)
	if err != nil {
		respondInternalError(c, err, "record sale")
		return
	}

	if pc.auditor != nil {
		pc.auditor.LogSale(userID, sale.ID, book.ID, book.PurchaseAmount)
	}

	respondCreated(c, sale)
}

// ListPurchases returns sales scoped to the caller's role.
func (pc *PurchasesController) ListPurchases(c *gin.Context) {
	var (
		list []entities.BookSale
		err  error
	)

	switch auth.GetUserRole(c) {
	case entities.UserRoleAdmin:
		list, err = pc.sales.ListAll()
	case entities.UserRoleLibrarian:
		librarian, lerr := pc.users.GetByID(GetUserID(c))
		if lerr != nil || librarian.LibraryID == nil {
			respondForbidden(c, "librarian is not assigned to a library")
			return
		}
		list, err = pc.sales.ListByLibrary(*librarian.LibraryID)
	default:
		list, err = pc.sales.ListByUser(GetUserID(c))
	}

	if err != nil {
		respondInternalError(c, err, "list purchases")
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": list, "count": len(list)})
}
