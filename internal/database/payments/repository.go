// Package payments provides read access to recorded payments (invoices).
// Payments themselves are written by the rentals and sales repositories,
// inside the transactions that create them; nothing mutates a payment after
// that.
package payments

import (
	"gorm.io/gorm"

	"github.com/tirudev/bookstack/internal/entities"
)

// Repository handles payment queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new payments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's invoices, newest first: every purchase
// payment plus the rent payments of rentals they have returned.
func (r *Repository) ListByUser(userID uint) ([]entities.Payment, error) {
	var payments []entities.Payment
	err := r.db.
		Preload("BookSale.Book").
		Preload("RentedBook.Book").
		Joins("LEFT JOIN book_sales ON book_sales.id = payments.book_sale_id").
		Joins("LEFT JOIN rented_books ON rented_books.id = payments.rented_book_id").
		Where("book_sales.user_id = ? OR (rented_books.user_id = ? AND rented_books.is_returned = ?)",
			userID, userID, true).
		Order("payments.created_at DESC").
		Find(&payments).Error
	return payments, err
}

// ListAll returns every payment, newest first.
func (r *Repository) ListAll() ([]entities.Payment, error) {
	var payments []entities.Payment
	err := r.db.
		Preload("BookSale.Book").
		Preload("RentedBook.Book").
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// GetByRental returns the payment settling the given rental, if any.
func (r *Repository) GetByRental(rentalID uint) (*entities.Payment, error) {
	var payment entities.Payment
	err := r.db.Where("rented_book_id = ?", rentalID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
