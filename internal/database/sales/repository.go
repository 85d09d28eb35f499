// Package sales provides database operations for one-shot book purchases.
package sales

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tirudev/bookstack/internal/entities"
)

var ErrBookNotFound = errors.New("book not found")

// Repository handles all sale database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sales repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record creates the sale and its purchase payment in one transaction.
// There is no eligibility check: a book may be purchased any number of
// times by any number of users.
func (r *Repository) Record(bookID, userID uint, amount decimal.Decimal, method entities.PaymentMethod) (*entities.BookSale, error) {
	var sale entities.BookSale

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		sale = entities.BookSale{
			BookID: bookID,
			UserID: userID,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}

		payment := entities.Payment{
			Amount:        amount,
			PaymentMethod: method,
			Type:          entities.PaymentTypePurchase,
			BookSaleID:    &sale.ID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to record sale payment: %w", err)
		}

		sale.Book = book
		sale.Payment = &payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListByUser returns a user's purchases, newest first.
func (r *Repository) ListByUser(userID uint) ([]entities.BookSale, error) {
	var sales []entities.BookSale
	err := r.db.Preload("Book").Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

// ListByLibrary returns every sale of the library's books, newest first.
func (r *Repository) ListByLibrary(libraryID uint) ([]entities.BookSale, error) {
	var sales []entities.BookSale
	err := r.db.Preload("Book").Preload("User").
		Joins("JOIN books ON books.id = book_sales.book_id").
		Where("books.library_id = ?", libraryID).
		Order("book_sales.created_at DESC").
		Find(&sales).Error
	return sales, err
}

// ListAll returns every sale across all libraries, newest first.
func (r *Repository) ListAll() ([]entities.BookSale, error) {
	var sales []entities.BookSale
	err := r.db.Preload("Book").Preload("User").
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}
