package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type Library struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:256" json:"name"`
	Location string `gorm:"size:512" json:"location"`
	PhoneNo  string `gorm:"size:20" json:"phone_no"`
	Email    string `gorm:"size:255" json:"email"`

	Books      []Book `gorm:"foreignKey:LibraryID" json:"books,omitempty"`
	Librarians []User `gorm:"foreignKey:LibraryID" json:"librarians,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Book struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"index;size:512" json:"title"`
	Author      string `gorm:"index;size:256" json:"author"`
	ISBN        string `gorm:"index;size:20" json:"isbn"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// PurchaseAmount is the flat sale price; it also caps rental fees once
	// a rental runs past the capped day count.
	PurchaseAmount decimal.Decimal `gorm:"type:decimal(10,2)" json:"purchase_amount"`

	PdfLink  string `gorm:"size:2048" json:"pdf_link,omitempty"`
	ImageURL string `gorm:"size:2048" json:"image_url,omitempty"`

	GenreID   uint    `gorm:"index" json:"genre_id"`
	Genre     Genre   `gorm:"foreignKey:GenreID" json:"genre,omitempty"`
	LibraryID uint    `gorm:"index" json:"library_id"`
	Library   Library `gorm:"foreignKey:LibraryID" json:"library,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Library) TableName() string {
	return "libraries"
}

func (Genre) TableName() string {
	return "genres"
}

func (Book) TableName() string {
	return "books"
}
