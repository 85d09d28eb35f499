package rentals

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirudev/bookstack/internal/database"
	"github.com/tirudev/bookstack/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()

	dbPath := "./test_rentals_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), db, cleanup
}

func seedRentalFixtures(t *testing.T, db *database.Database) (*entities.User, *entities.Book) {
	t.Helper()

	user := &entities.User{
		Name:   "Repo Customer",
		Email:  "repo-customer@example.com",
		Role:   entities.UserRoleCustomer,
		Status: entities.AccountStatusActive,
	}
	require.NoError(t, db.DB.Create(user).Error)

	library := &entities.Library{Name: "Repo Library"}
	require.NoError(t, db.DB.Create(library).Error)

	genre := &entities.Genre{Name: "Repo Fiction"}
	require.NoError(t, db.DB.Create(genre).Error)

	book := &entities.Book{
		Title:          "Settled Accounts",
		Author:         "B. Keeper",
		PurchaseAmount: decimal.RequireFromString("18.00"),
		GenreID:        genre.ID,
		LibraryID:      library.ID,
	}
	require.NoError(t, db.DB.Create(book).Error)

	return user, book
}

func TestRepository_Create(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()
	user, book := seedRentalFixtures(t, db)

	t.Run("opens an active rental", func(t *testing.T) {
		rental, err := repo.Create(book.ID, user.ID)
		require.NoError(t, err)
		assert.NotZero(t, rental.ID)
		assert.False(t, rental.IsReturned)
		assert.Nil(t, rental.ReturnDate)
		assert.Equal(t, book.Title, rental.Book.Title)
	})

	t.Run("the same title can be rented concurrently", func(t *testing.T) {
		first, err := repo.Create(book.ID, user.ID)
		require.NoError(t, err)
		second, err := repo.Create(book.ID, user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := repo.Create(99999, user.ID)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestRepository_Settle(t *testing.T) {
	t.Run("records payment and closes rental atomically", func(t *testing.T) {
		repo, db, cleanup := setupTestRepo(t)
		defer cleanup()
		user, book := seedRentalFixtures(t, db)

		rental, err := repo.Create(book.ID, user.ID)
		require.NoError(t, err)

		amount := decimal.RequireFromString("42.50")
		settled, err := repo.Settle(rental.ID, amount, entities.PaymentMethodCreditCard)
		require.NoError(t, err)

		assert.True(t, settled.IsReturned)
		require.NotNil(t, settled.ReturnDate)
		require.NotNil(t, settled.Payment)
		assert.True(t, amount.Equal(settled.Payment.Amount))
		assert.Equal(t, entities.PaymentTypeRent, settled.Payment.Type)
		require.NotNil(t, settled.Payment.RentedBookID)
		assert.Equal(t, rental.ID, *settled.Payment.RentedBookID)
	})

	t.Run("second settlement fails and leaves one payment", func(t *testing.T) {
		repo, db, cleanup := setupTestRepo(t)
		defer cleanup()
		user, book := seedRentalFixtures(t, db)

		rental, err := repo.Create(book.ID, user.ID)
		require.NoError(t, err)

		_, err = repo.Settle(rental.ID, decimal.RequireFromString("10.00"), entities.PaymentMethodCreditCard)
		require.NoError(t, err)

		_, err = repo.Settle(rental.ID, decimal.RequireFromString("10.00"), entities.PaymentMethodDebitCard)
		assert.ErrorIs(t, err, ErrAlreadySettled)

		var paymentCount int64
		require.NoError(t, db.DB.Model(&entities.Payment{}).
			Where("rented_book_id = ?", rental.ID).
			Count(&paymentCount).Error)
		assert.Equal(t, int64(1), paymentCount)

		// The original return date survives the failed attempt.
		reloaded, err := repo.GetByID(rental.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("10.00").Equal(reloaded.Payment.Amount))
	})

	t.Run("unknown rental", func(t *testing.T) {
		repo, _, cleanup := setupTestRepo(t)
		defer cleanup()

		_, err := repo.Settle(12345, decimal.Zero, entities.PaymentMethodCreditCard)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_CountSettledByUser(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()
	user, book := seedRentalFixtures(t, db)

	count, err := repo.CountSettledByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	first, err := repo.Create(book.ID, user.ID)
	require.NoError(t, err)

	// An open rental does not count as history.
	count, err = repo.CountSettledByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = repo.Settle(first.ID, decimal.Zero, entities.PaymentMethodCreditCard)
	require.NoError(t, err)

	count, err = repo.CountSettledByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Reminders(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()
	user, book := seedRentalFixtures(t, db)

	oldRental, err := repo.Create(book.ID, user.ID)
	require.NoError(t, err)
	freshRental, err := repo.Create(book.ID, user.ID)
	require.NoError(t, err)

	// Age one rental past the cutoff.
	start := time.Now().Add(-28 * 24 * time.Hour)
	require.NoError(t, db.DB.Model(&entities.RentedBook{}).
		Where("id = ?", oldRental.ID).
		Update("created_at", start).Error)

	cutoff := time.Now().Add(-27 * 24 * time.Hour)

	t.Run("finds aged active rentals only", func(t *testing.T) {
		due, err := repo.ListActiveOlderThan(cutoff)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, oldRental.ID, due[0].ID)
		assert.Equal(t, user.Email, due[0].User.Email)

		for _, rental := range due {
			assert.NotEqual(t, freshRental.ID, rental.ID)
		}
	})

	t.Run("marked rentals drop out of the scan", func(t *testing.T) {
		require.NoError(t, repo.MarkReminderSent(oldRental.ID))

		due, err := repo.ListActiveOlderThan(cutoff)
		require.NoError(t, err)
		assert.Empty(t, due)

		reloaded, err := repo.GetByID(oldRental.ID)
		require.NoError(t, err)
		assert.NotNil(t, reloaded.ReminderSentAt)
	})

	t.Run("settled rentals are never due", func(t *testing.T) {
		lateRental, err := repo.Create(book.ID, user.ID)
		require.NoError(t, err)
		require.NoError(t, db.DB.Model(&entities.RentedBook{}).
			Where("id = ?", lateRental.ID).
			Update("created_at", start).Error)

		_, err = repo.Settle(lateRental.ID, decimal.Zero, entities.PaymentMethodCreditCard)
		require.NoError(t, err)

		due, err := repo.ListActiveOlderThan(cutoff)
		require.NoError(t, err)
		assert.Empty(t, due)
	})
}

func TestRepository_Listing(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()
	user, book := seedRentalFixtures(t, db)

	other := &entities.User{
		Name:   "Other Customer",
		Email:  "other-customer@example.com",
		Role:   entities.UserRoleCustomer,
		Status: entities.AccountStatusActive,
	}
	require.NoError(t, db.DB.Create(other).Error)

	_, err := repo.Create(book.ID, user.ID)
	require.NoError(t, err)
	_, err = repo.Create(book.ID, other.ID)
	require.NoError(t, err)

	t.Run("by user", func(t *testing.T) {
		mine, err := repo.ListByUser(user.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, user.ID, mine[0].UserID)
	})

	t.Run("by library", func(t *testing.T) {
		all, err := repo.ListByLibrary(book.LibraryID)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		none, err := repo.ListByLibrary(999)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("all", func(t *testing.T) {
		all, err := repo.ListAll()
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
