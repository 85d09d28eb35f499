package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tirudev/bookstack/internal/auth"
	"github.com/tirudev/bookstack/internal/database/catalog"
	"github.com/tirudev/bookstack/internal/database/users"
	"github.com/tirudev/bookstack/internal/entities"
)

// BookAddedNotifier enqueues a notification when a book joins the catalog.
// Implemented by the task client; nil disables notifications.
type BookAddedNotifier interface {
	NotifyBookAdded(book *entities.Book) error
}

// CatalogController handles browsing and managing the book catalog.
type CatalogController struct {
	catalog  *catalog.Repository
	users    *users.Repository
	notifier BookAddedNotifier
}

// NewCatalogController creates a new catalog controller.
func NewCatalogController(catalogRepo *catalog.Repository, usersRepo *users.Repository, notifier BookAddedNotifier) *CatalogController {
	return &CatalogController{
		catalog:  catalogRepo,
		users:    usersRepo,
		notifier: notifier,
	}
}

// ListBooks returns the whole catalog, optionally filtered to one library.
func (cc *CatalogController) ListBooks(c *gin.Context) {
	var (
		books []entities.Book
		err   error
	)

	if libraryIDStr := c.Query("library_id"); libraryIDStr != "" {
		libraryID, ok := parseQueryUint(c, "library_id", libraryIDStr)
		if !ok {
			return
		}
		books, err = cc.catalog.GetBooksByLibrary(libraryID)
	} else {
		books, err = cc.catalog.GetAllBooks()
	}

	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// SearchBooks searches titles and authors.
func (cc *CatalogController) SearchBooks(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	books, err := cc.catalog.SearchBooks(query)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBook returns one book by ID.
func (cc *CatalogController) GetBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.catalog.GetBookByID(bookID)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
		} else {
			respondInternalError(c, err, "get book")
		}
		return
	}

	c.JSON(http.StatusOK, book)
}

// ListPurchasedBooks returns the books the caller has bought.
func (cc *CatalogController) ListPurchasedBooks(c *gin.Context) {
	books, err := cc.catalog.GetPurchasedBooksByUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list purchased books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

type bookRequest struct {
	Title          string          `json:"title" binding:"required"`
	Author         string          `json:"author" binding:"required"`
	ISBN           string          `json:"isbn"`
	Description    string          `json:"description"`
	PurchaseAmount decimal.Decimal `json:"purchase_amount"`
	PdfLink        string          `json:"pdf_link"`
	ImageURL       string          `json:"image_url"`
	GenreID        uint            `json:"genre_id" binding:"required"`
	LibraryID      uint            `json:"library_id"`
}

// CreateBook adds a book to the catalog. Librarians always create into
// their own library; admins must name one.
func (cc *CatalogController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title, author and genre_id are required")
		return
	}
	if req.PurchaseAmount.IsNegative() {
		respondBadRequest(c, "purchase_amount cannot be negative")
		return
	}

	libraryID, ok := cc.resolveLibraryScope(c, req.LibraryID)
	if !ok {
		return
	}

	book := &entities.Book{
		Title:          req.Title,
		Author:         req.Author,
		ISBN:           req.ISBN,
		Description:    req.Description,
		PurchaseAmount: req.PurchaseAmount,
		PdfLink:        req.PdfLink,
		ImageURL:       req.ImageURL,
		GenreID:        req.GenreID,
		LibraryID:      libraryID,
	}

	if err := cc.catalog.CreateBook(book); err != nil {
		if errors.Is(err, catalog.ErrGenreNotFound) {
			respondBadRequest(c, "genre does not exist")
		} else {
			respondInternalError(c, err, "create book")
		}
		return
	}

	if cc.notifier != nil {
		if err := cc.notifier.NotifyBookAdded(book); err != nil {
			log.Printf("Failed to enqueue book notification: %v", err)
		}
	}

	respondCreated(c, book)
}

type bookUpdateRequest struct {
	Title          *string          `json:"title"`
	Author         *string          `json:"author"`
	ISBN           *string          `json:"isbn"`
	Description    *string          `json:"description"`
	PurchaseAmount *decimal.Decimal `json:"purchase_amount"`
	PdfLink        *string          `json:"pdf_link"`
	ImageURL       *string          `json:"image_url"`
	GenreID        *uint            `json:"genre_id"`
}

// UpdateBook patches a book. Librarians can only touch books in their
// own library.
func (cc *CatalogController) UpdateBook(c *gin.Context) {
	book, ok := cc.loadScopedBook(c)
	if !ok {
		return
	}

	var req bookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if req.ISBN != nil {
		updates["isbn"] = *req.ISBN
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PurchaseAmount != nil {
		if req.PurchaseAmount.IsNegative() {
			respondBadRequest(c, "purchase_amount cannot be negative")
			return
		}
		updates["purchase_amount"] = *req.PurchaseAmount
	}
	if req.PdfLink != nil {
		updates["pdf_link"] = *req.PdfLink
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.GenreID != nil {
		updates["genre_id"] = *req.GenreID
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	updated, err := cc.catalog.UpdateBook(book.ID, updates)
	if err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteBook removes a book from the catalog.
func (cc *CatalogController) DeleteBook(c *gin.Context) {
	book, ok := cc.loadScopedBook(c)
	if !ok {
		return
	}

	if err := cc.catalog.DeleteBook(book.ID); err != nil {
		respondInternalError(c, err, "delete book")
		return
	}

	respondSuccess(c, "book deleted")
}

// resolveLibraryScope decides which library a catalog mutation targets.
// Librarians are pinned to their assigned library regardless of the
// request; admins must pass library_id explicitly.
func (cc *CatalogController) resolveLibraryScope(c *gin.Context, requested uint) (uint, bool) {
	if auth.GetUserRole(c) == entities.UserRoleAdmin {
		if requested == 0 {
			respondBadRequest(c, "library_id is required")
			return 0, false
		}
		return requested, true
	}

	librarian, err := cc.users.GetByID(GetUserID(c))
	if err != nil || librarian.LibraryID == nil {
		respondForbidden(c, "librarian is not assigned to a library")
		return 0, false
	}
	return *librarian.LibraryID, true
}

// loadScopedBook loads the book from the path and enforces library scoping
// for librarians.
func (cc *CatalogController) loadScopedBook(c *gin.Context) (*entities.Book, bool) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	book, err := cc.catalog.GetBookByID(bookID)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
		} else {
			respondInternalError(c, err, "load book")
		}
		return nil, false
	}

	if auth.GetUserRole(c) == entities.UserRoleLibrarian {
		librarian, err := cc.users.GetByID(GetUserID(c))
		if err != nil || librarian.LibraryID == nil || *librarian.LibraryID != book.LibraryID {
			respondForbidden(c, "book belongs to another library")
			return nil, false
		}
	}

	return book, true
}

// parseQueryUint parses a numeric query value that is already known to be
// non-empty.
func parseQueryUint(c *gin.Context, name, value string) (uint, bool) {
	id, err := parseUint(value)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
