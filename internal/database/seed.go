package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tirudev/bookstack/internal/auth"
	"github.com/tirudev/bookstack/internal/entities"
)

// SeedDemoData provisions the accounts, catalog and pricing configuration a
// fresh deployment needs: one admin, one customer, one library with a
// librarian and a sample book, and the singleton pricing config. It is
// idempotent; existing records are left alone.
func (d *Database) SeedDemoData(bcryptCost int) error {
	password, err := auth.HashPassword("demo-password-1234", bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	admin := entities.User{
		Name:         "Admin",
		Email:        "admin@bookstack.local",
		PasswordHash: password,
		Role:         entities.UserRoleAdmin,
	}
	if err := d.createUserIfMissing(&admin); err != nil {
		return err
	}

	customer := entities.User{
		Name:         "Customer",
		Email:        "customer@bookstack.local",
		PasswordHash: password,
		Role:         entities.UserRoleCustomer,
	}
	if err := d.createUserIfMissing(&customer); err != nil {
		return err
	}

	var library entities.Library
	err = d.DB.Where("name = ?", "Central Library").First(&library).Error
	if err == nil {
		log.Printf("Seed: library already exists, skipping catalog")
		return d.seedPricingConfig()
	}

	library = entities.Library{
		Name:     "Central Library",
		Location: "1 Main Street",
		PhoneNo:  "1234567890",
		Email:    "library@bookstack.local",
	}
	if err := d.DB.Create(&library).Error; err != nil {
		return fmt.Errorf("failed to create library: %w", err)
	}

	librarian := entities.User{
		Name:         "Librarian",
		Email:        "librarian@bookstack.local",
		PasswordHash: password,
		Role:         entities.UserRoleLibrarian,
		LibraryID:    &library.ID,
	}
	if err := d.createUserIfMissing(&librarian); err != nil {
		return err
	}

	var genre entities.Genre
	if err := d.DB.Where("name = ?", "Fiction").First(&genre).Error; err != nil {
		return fmt.Errorf("failed to look up seed genre: %w", err)
	}

	book := entities.Book{
		Title:          "The Enchanted Forest",
		Author:         "Emily R. Thompson",
		ISBN:           "978-3-16-148410-0",
		PurchaseAmount: decimal.NewFromFloat(24.99),
		GenreID:        genre.ID,
		LibraryID:      library.ID,
	}
	if err := d.DB.Create(&book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	if err := d.seedPricingConfig(); err != nil {
		return err
	}

	log.Printf("Seed: created admin, customer, librarian, library, book and pricing config")
	return nil
}

func (d *Database) createUserIfMissing(user *entities.User) error {
	var existing entities.User
	result := d.DB.Where("email = ?", user.Email).First(&existing)
	if result.Error == nil {
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up user %s: %w", user.Email, result.Error)
	}
	if err := d.DB.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}
	return nil
}

func (d *Database) seedPricingConfig() error {
	var count int64
	if err := d.DB.Model(&entities.PricingConfig{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count pricing configs: %w", err)
	}
	if count > 0 {
		return nil
	}
	cfg := entities.PricingConfig{
		TierOneRatePerDay: decimal.NewFromInt(6),
		TierTwoRatePerDay: decimal.NewFromInt(3),
	}
	if err := d.DB.Create(&cfg).Error; err != nil {
		return fmt.Errorf("failed to create pricing config: %w", err)
	}
	return nil
}
