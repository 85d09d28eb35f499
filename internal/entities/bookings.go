package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard:
		return true
	}
	return false
}

type PaymentType string

const (
	PaymentTypePurchase PaymentType = "purchase"
	PaymentTypeRent     PaymentType = "rent"
)

// RentedBook is a single checkout of a book by a customer. CreatedAt is the
// rental start; ReturnDate and IsReturned are set together, exactly once, at
// settlement, in the same transaction that records the payment.
type RentedBook struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	BookID uint `gorm:"index" json:"book_id"`
	Book   Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	UserID uint `gorm:"index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	ReturnDate *time.Time `json:"return_date,omitempty"`
	IsReturned bool       `gorm:"default:false" json:"is_returned"`

	// ReminderSentAt tracks the free-tier reminder email so the scheduler
	// does not send it twice.
	ReminderSentAt *time.Time `json:"-"`

	Payment *Payment `gorm:"foreignKey:RentedBookID" json:"payment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookSale struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	BookID uint `gorm:"index" json:"book_id"`
	Book   Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	UserID uint `gorm:"index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Payment *Payment `gorm:"foreignKey:BookSaleID" json:"payment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Payment is immutable once created. Exactly one of BookSaleID and
// RentedBookID is set, matching Type. The unique indexes enforce the
// one-payment-per-sale and one-payment-per-rental invariants at the
// database level.
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"size:20" json:"payment_method"`
	Type          PaymentType     `gorm:"size:20" json:"type"`

	BookSaleID   *uint     `gorm:"uniqueIndex" json:"book_sale_id,omitempty"`
	BookSale     *BookSale `gorm:"foreignKey:BookSaleID" json:"book_sale,omitempty"`
	RentedBookID *uint       `gorm:"uniqueIndex" json:"rented_book_id,omitempty"`
	RentedBook   *RentedBook `gorm:"foreignKey:RentedBookID" json:"rented_book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (RentedBook) TableName() string {
	return "rented_books"
}

func (BookSale) TableName() string {
	return "book_sales"
}

func (Payment) TableName() string {
	return "payments"
}
