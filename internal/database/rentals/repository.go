// Package rentals provides database operations for the rental lifecycle.
//
// # Usage
//
//	repo := rentals.NewRepository(db)
//	rental, err := repo.Settle(id, amount, method)
package rentals

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tirudev/bookstack/internal/entities"
)

var (
	ErrNotFound       = errors.New("rental not found")
	ErrAlreadySettled = errors.New("rental already settled")
	ErrBookNotFound   = errors.New("book not found")
)

// Repository handles all rental database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new rentals repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create opens a new rental of the given book for the given user. There is
// no inventory constraint: any number of customers may rent the same title
// at once.
func (r *Repository) Create(bookID, userID uint) (*entities.RentedBook, error) {
	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	rental := &entities.RentedBook{
		BookID: bookID,
		UserID: userID,
	}
	if err := r.db.Create(rental).Error; err != nil {
		return nil, err
	}
	rental.Book = book
	return rental, nil
}

// GetByID retrieves a rental with its book, user and payment.
func (r *Repository) GetByID(id uint) (*entities.RentedBook, error) {
	var rental entities.RentedBook
	err := r.db.Preload("Book").Preload("User").Preload("Payment").First(&rental, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rental, nil
}

// ListByUser returns a user's rentals, newest first.
func (r *Repository) ListByUser(userID uint) ([]entities.RentedBook, error) {
	var rentals []entities.RentedBook
	err := r.db.Preload("Book").Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rentals).Error
	return rentals, err
}

// ListByLibrary returns every rental of the library's books, newest first.
func (r *Repository) ListByLibrary(libraryID uint) ([]entities.RentedBook, error) {
	var rentals []entities.RentedBook
	err := r.db.Preload("Book").Preload("User").
		Joins("JOIN books ON books.id = rented_books.book_id").
		Where("books.library_id = ?", libraryID).
		Order("rented_books.created_at DESC").
		Find(&rentals).Error
	return rentals, err
}

// ListAll returns every rental across all libraries, newest first.
func (r *Repository) ListAll() ([]entities.RentedBook, error) {
	var rentals []entities.RentedBook
	err := r.db.Preload("Book").Preload("User").
		Order("created_at DESC").
		Find(&rentals).Error
	return rentals, err
}

// CountSettledByUser counts the user's settled rentals. The loyalty
// discount applies to customers with settlement history.
func (r *Repository) CountSettledByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.RentedBook{}).
		Where("user_id = ? AND is_returned = ?", userID, true).
		Count(&count).Error
	return count, err
}

// Settle transitions a rental to returned and records its payment as one
// all-or-nothing transaction. The return-date update is conditional on the
// rental still being active, so a concurrent second settlement loses the
// race and fails with ErrAlreadySettled instead of inserting a duplicate
// payment. The caller must have computed amount server-side.
func (r *Repository) Settle(rentalID uint, amount decimal.Decimal, method entities.PaymentMethod) (*entities.RentedBook, error) {
	var settled entities.RentedBook

	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&entities.RentedBook{}).
			Where("id = ? AND return_date IS NULL", rentalID).
			Updates(map[string]any{
				"return_date": now,
				"is_returned": true,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var existing entities.RentedBook
			if err := tx.First(&existing, rentalID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			return ErrAlreadySettled
		}

		payment := entities.Payment{
			Amount:        amount,
			PaymentMethod: method,
			Type:          entities.PaymentTypeRent,
			RentedBookID:  &rentalID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to record rental payment: %w", err)
		}

		return tx.Preload("Book").Preload("Payment").First(&settled, rentalID).Error
	})
	if err != nil {
		return nil, err
	}
	return &settled, nil
}

// ListActiveOlderThan returns active rentals started on or before cutoff
// that have not been sent a reminder yet. The scheduler uses it to warn
// customers whose free tier is about to end.
func (r *Repository) ListActiveOlderThan(cutoff time.Time) ([]entities.RentedBook, error) {
	var rentals []entities.RentedBook
	err := r.db.Preload("Book").Preload("User").
		Where("return_date IS NULL AND reminder_sent_at IS NULL AND created_at <= ?", cutoff).
		Find(&rentals).Error
	return rentals, err
}

// MarkReminderSent stamps the rental so the reminder is sent only once.
func (r *Repository) MarkReminderSent(rentalID uint) error {
	return r.db.Model(&entities.RentedBook{}).
		Where("id = ?", rentalID).
		Update("reminder_sent_at", time.Now()).Error
}
