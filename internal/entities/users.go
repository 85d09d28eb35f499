package entities

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleLibrarian UserRole = "librarian"
	UserRoleCustomer  UserRole = "customer"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
)

type User struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"size:100" json:"name"`
	Email        string        `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string        `gorm:"size:255" json:"-"`
	Role         UserRole      `gorm:"size:20;default:'customer'" json:"role"`
	Status       AccountStatus `gorm:"size:20;default:'active'" json:"status"`

	// LibraryID is set for librarians assigned to a library.
	LibraryID *uint    `gorm:"index" json:"library_id,omitempty"`
	Library   *Library `gorm:"foreignKey:LibraryID" json:"library,omitempty"`

	// Login bookkeeping
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
