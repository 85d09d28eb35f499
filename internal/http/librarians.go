package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tirudev/bookstack/internal/audit"
	"github.com/tirudev/bookstack/internal/auth"
	"github.com/tirudev/bookstack/internal/database/users"
	"github.com/tirudev/bookstack/internal/entities"
)

// LibrariansController handles librarian account administration.
type LibrariansController struct {
	users       *users.Repository
	authService *auth.Service
	auditor     *audit.Service
}

// NewLibrariansController creates a new librarians controller.
func NewLibrariansController(usersRepo *users.Repository, authService *auth.Service, auditor *audit.Service) *LibrariansController {
	return &LibrariansController{
		users:       usersRepo,
		authService: authService,
		auditor:     auditor,
	}
}

// ListLibrarians returns all active librarians.
func (lc *LibrariansController) ListLibrarians(c *gin.Context) {
	list, err := lc.users.ListLibrarians()
	if err != nil {
		respondInternalError(c, err, "list librarians")
		return
	}
	c.JSON(http.StatusOK, gin.H{"librarians": list, "count": len(list)})
}

// ListUnassignedLibrarians returns librarians without a library, the pool
// available when creating or reassigning a library.
func (lc *LibrariansController) ListUnassignedLibrarians(c *gin.Context) {
	list, err := lc.users.ListUnassignedLibrarians()
	if err != nil {
		respondInternalError(c, err, "list unassigned librarians")
		return
	}
	c.JSON(http.StatusOK, gin.H{"librarians": list, "count": len(list)})
}

type createLibrarianRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateLibrarian creates a librarian account.
func (lc *LibrariansController) CreateLibrarian(c *gin.Context) {
	var req createLibrarianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name, email and password are required")
		return
	}

	librarian, err := lc.authService.CreateUser(req.Name, req.Email, req.Password, entities.UserRoleLibrarian)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondConflict(c, "an account with this email already exists")
		case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong),
			errors.Is(err, auth.ErrEmailInvalid):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "create librarian")
		}
		return
	}

	if lc.auditor != nil {
		lc.auditor.LogAccountChange(GetUserID(c), librarian.ID, "librarian_created", "Created librarian "+librarian.Email)
	}

	respondCreated(c, librarian)
}

type assignLibraryRequest struct {
	// LibraryID of nil unassigns the librarian.
	LibraryID *uint `json:"library_id"`
}

// AssignLibrary attaches a librarian to a library, or detaches them.
func (lc *LibrariansController) AssignLibrary(c *gin.Context) {
	librarianID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req assignLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := lc.users.AssignLibrary(librarianID, req.LibraryID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, "librarian")
		} else {
			respondInternalError(c, err, "assign library")
		}
		return
	}

	if lc.auditor != nil {
		lc.auditor.LogAccountChange(GetUserID(c), librarianID, "librarian_assigned", "Changed librarian library assignment")
	}

	respondSuccess(c, "librarian assignment updated")
}

type setStatusRequest struct {
	Status entities.AccountStatus `json:"status" binding:"required"`
}

// SetUserStatus suspends or reactivates an account.
func (lc *LibrariansController) SetUserStatus(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}
	if req.Status != entities.AccountStatusActive && req.Status != entities.AccountStatusSuspended {
		respondBadRequest(c, "status must be active or suspended")
		return
	}
	if userID == GetUserID(c) {
		respondBadRequest(c, "cannot change your own status")
		return
	}

	if err := lc.users.SetStatus(userID, req.Status); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, "user")
		} else {
			respondInternalError(c, err, "set user status")
		}
		return
	}

	if lc.auditor != nil {
		lc.auditor.LogAccountChange(GetUserID(c), userID, "account_status_changed", "Set account status to "+string(req.Status))
	}

	respondSuccess(c, "account status updated")
}
