// Package catalog provides database operations for books and genres.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	book, err := repo.GetBookByID(id)
package catalog

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tirudev/bookstack/internal/entities"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrGenreNotFound = errors.New("genre not found")
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAllBooks returns the whole catalog, newest first.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Library").Preload("Genre").
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

// GetBooksByLibrary returns a single library's catalog.
func (r *Repository) GetBooksByLibrary(libraryID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Library").Preload("Genre").
		Where("library_id = ?", libraryID).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

// GetBookByID retrieves a single book with its genre and library.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Library").Preload("Genre").First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// SearchBooks matches title or author, case-insensitively.
func (r *Repository) SearchBooks(query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.Preload("Library").Preload("Genre").
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern).
		Find(&books).Error
	return books, err
}

// GetPurchasedBooksByUser returns the books a user has bought.
func (r *Repository) GetPurchasedBooksByUser(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Joins("JOIN book_sales ON book_sales.book_id = books.id").
		Where("book_sales.user_id = ?", userID).
		Order("books.created_at DESC").
		Group("books.id").
		Find(&books).Error
	return books, err
}

// CreateBook adds a book to a library's catalog.
func (r *Repository) CreateBook(book *entities.Book) error {
	var genre entities.Genre
	if err := r.db.First(&genre, book.GenreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenreNotFound
		}
		return err
	}
	return r.db.Create(book).Error
}

// UpdateBook applies the non-zero fields of updates to an existing book.
func (r *Repository) UpdateBook(id uint, updates map[string]any) (*entities.Book, error) {
	book, err := r.GetBookByID(id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(book).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetBookByID(id)
}

// DeleteBook removes a book from the catalog.
func (r *Repository) DeleteBook(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}
