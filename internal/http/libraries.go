package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tirudev/bookstack/internal/audit"
	"github.com/tirudev/bookstack/internal/database/libraries"
	"github.com/tirudev/bookstack/internal/entities"
)

// LibrariesController handles library administration.
type LibrariesController struct {
	libraries *libraries.Repository
	auditor   *audit.Service
}

// NewLibrariesController creates a new libraries controller.
func NewLibrariesController(librariesRepo *libraries.Repository, auditor *audit.Service) *LibrariesController {
	return &LibrariesController{
		libraries: librariesRepo,
		auditor:   auditor,
	}
}

// ListLibraries returns all libraries.
func (lc *LibrariesController) ListLibraries(c *gin.Context) {
	list, err := lc.libraries.GetAll()
	if err != nil {
		respondInternalError(c, err, "list libraries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"libraries": list, "count": len(list)})
}

// GetLibrary returns one library with its librarians.
func (lc *LibrariesController) GetLibrary(c *gin.Context) {
	libraryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	library, err := lc.libraries.GetByID(libraryID)
	if err != nil {
		if errors.Is(err, libraries.ErrNotFound) {
			respondNotFound(c, "library")
		} else {
			respondInternalError(c, err, "get library")
		}
		return
	}

	c.JSON(http.StatusOK, library)
}

type libraryRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	PhoneNo  string `json:"phone_no"`
	Email    string `json:"email"`

	// LibrarianID optionally assigns a librarian in the same transaction.
	LibrarianID *uint `json:"librarian_id"`
}

// CreateLibrary creates a library, optionally assigning a librarian to it.
func (lc *LibrariesController) CreateLibrary(c *gin.Context) {
	var req libraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	library := &entities.Library{
		Name:     req.Name,
		Location: req.Location,
		PhoneNo:  req.PhoneNo,
		Email:    req.Email,
	}

	if err := lc.libraries.Create(library, req.LibrarianID); err != nil {
		respondInternalError(c, err, "create library")
		return
	}

	respondCreated(c, library)
}

type libraryUpdateRequest struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	PhoneNo     *string `json:"phone_no"`
	Email       *string `json:"email"`
	LibrarianID *uint   `json:"librarian_id"`
}

// UpdateLibrary patches a library and can reassign its librarian.
func (lc *LibrariesController) UpdateLibrary(c *gin.Context) {
	libraryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req libraryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.PhoneNo != nil {
		updates["phone_no"] = *req.PhoneNo
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if len(updates) == 0 && req.LibrarianID == nil {
		respondBadRequest(c, "no fields to update")
		return
	}

	library, err := lc.libraries.Update(libraryID, updates, req.LibrarianID)
	if err != nil {
		if errors.Is(err, libraries.ErrNotFound) {
			respondNotFound(c, "library")
		} else {
			respondInternalError(c, err, "update library")
		}
		return
	}

	c.JSON(http.StatusOK, library)
}

// DeleteLibrary removes a library.
func (lc *LibrariesController) DeleteLibrary(c *gin.Context) {
	libraryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := lc.libraries.Delete(libraryID); err != nil {
		if errors.Is(err, libraries.ErrNotFound) {
			respondNotFound(c, "library")
		} else {
			respondInternalError(c, err, "delete library")
		}
		return
	}

	respondSuccess(c, "library deleted")
}
