// Package users provides database operations for user and librarian
// management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(email)
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tirudev/bookstack/internal/entities"
)

var ErrNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.Preload("Library").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListLibrarians returns all active librarian accounts with their library.
func (r *Repository) ListLibrarians() ([]entities.User, error) {
	var librarians []entities.User
	err := r.db.Preload("Library").
		Where("role = ? AND status = ?", entities.UserRoleLibrarian, entities.AccountStatusActive).
		Find(&librarians).Error
	return librarians, err
}

// ListUnassignedLibrarians returns active librarians without a library.
func (r *Repository) ListUnassignedLibrarians() ([]entities.User, error) {
	var librarians []entities.User
	err := r.db.
		Where("role = ? AND status = ? AND library_id IS NULL",
			entities.UserRoleLibrarian, entities.AccountStatusActive).
		Find(&librarians).Error
	return librarians, err
}

// GetLibrarianByID retrieves a librarian account.
func (r *Repository) GetLibrarianByID(id uint) (*entities.User, error) {
	var librarian entities.User
	err := r.db.Preload("Library").
		Where("id = ? AND role = ?", id, entities.UserRoleLibrarian).
		First(&librarian).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &librarian, nil
}

// AssignLibrary moves a librarian to the given library (nil unassigns).
func (r *Repository) AssignLibrary(librarianID uint, libraryID *uint) error {
	result := r.db.Model(&entities.User{}).
		Where("id = ? AND role = ?", librarianID, entities.UserRoleLibrarian).
		Update("library_id", libraryID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus activates or suspends an account.
func (r *Repository) SetStatus(id uint, status entities.AccountStatus) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
