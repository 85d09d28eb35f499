// Package libraries provides database operations for library management.
package libraries

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tirudev/bookstack/internal/entities"
)

var ErrNotFound = errors.New("library not found")

// Repository handles all library database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new libraries repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAll returns every library with its librarians.
func (r *Repository) GetAll() ([]entities.Library, error) {
	var libs []entities.Library
	err := r.db.Preload("Librarians").Find(&libs).Error
	return libs, err
}

// GetByID retrieves a library with its librarians.
func (r *Repository) GetByID(id uint) (*entities.Library, error) {
	var lib entities.Library
	err := r.db.Preload("Librarians").First(&lib, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lib, nil
}

// Create adds a library and optionally assigns a librarian to it, as one
// transaction.
func (r *Repository) Create(lib *entities.Library, librarianID *uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lib).Error; err != nil {
			return err
		}
		if librarianID != nil {
			return assignLibrarian(tx, *librarianID, lib.ID)
		}
		return nil
	})
}

// Update modifies a library's fields and optionally reassigns a librarian,
// as one transaction.
func (r *Repository) Update(id uint, updates map[string]any, librarianID *uint) (*entities.Library, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Library{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if librarianID != nil {
			return assignLibrarian(tx, *librarianID, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Delete removes a library.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Library{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func assignLibrarian(tx *gorm.DB, librarianID, libraryID uint) error {
	result := tx.Model(&entities.User{}).
		Where("id = ? AND role = ?", librarianID, entities.UserRoleLibrarian).
		Update("library_id", libraryID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("librarian not found")
	}
	return nil
}
