// Package genres provides database operations for genre management.
package genres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tirudev/bookstack/internal/entities"
)

var (
	ErrNotFound = errors.New("genre not found")
	ErrExists   = errors.New("genre already exists")
)

// Repository handles all genre database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new genres repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAll returns every genre.
func (r *Repository) GetAll() ([]entities.Genre, error) {
	var genres []entities.Genre
	err := r.db.Order("name").Find(&genres).Error
	return genres, err
}

// GetByID retrieves a genre.
func (r *Repository) GetByID(id uint) (*entities.Genre, error) {
	var genre entities.Genre
	err := r.db.First(&genre, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &genre, nil
}

// Create adds a genre with a unique name.
func (r *Repository) Create(name string) (*entities.Genre, error) {
	var existing entities.Genre
	err := r.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, ErrExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	genre := entities.Genre{Name: name}
	if err := r.db.Create(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

// Rename changes a genre's name.
func (r *Repository) Rename(id uint, name string) (*entities.Genre, error) {
	result := r.db.Model(&entities.Genre{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(id)
}

// Delete removes a genre.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Genre{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
