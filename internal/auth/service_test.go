package auth

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tirudev/bookstack/internal/config"
	"github.com/tirudev/bookstack/internal/entities"
)

func setupTestService(t *testing.T) (*gorm.DB, *Service, func()) {
	dbPath := "./test_auth_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{}, &entities.Library{})
	require.NoError(t, err)

	svc := NewService(db, config.Auth{
		BcryptCost:       4, // Low cost for faster tests
		MaxLoginAttempts: 3,
		LockoutDuration:  10 * time.Minute,
	})

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, svc, cleanup
}

func TestRegister(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	t.Run("creates a customer account", func(t *testing.T) {
		user, err := svc.Register("Jane Reader", "jane@example.com", "reading-is-fun")
		require.NoError(t, err)
		assert.Equal(t, entities.UserRoleCustomer, user.Role)
		assert.Equal(t, entities.AccountStatusActive, user.Status)
		assert.NotEqual(t, "reading-is-fun", user.PasswordHash)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		_, err := svc.Register("Jane Again", "jane@example.com", "another-password")
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		_, err := svc.Register("No Email", "not-an-email", "good-password")
		assert.ErrorIs(t, err, ErrEmailInvalid)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		_, err := svc.Register("Short", "short@example.com", "tiny")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})
}

func TestCreateUser(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	t.Run("creates a librarian", func(t *testing.T) {
		user, err := svc.CreateUser("Lib Rarian", "lib@example.com", "stacks-and-shelves", entities.UserRoleLibrarian)
		require.NoError(t, err)
		assert.Equal(t, entities.UserRoleLibrarian, user.Role)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		_, err := svc.CreateUser("Odd Role", "odd@example.com", "some-password", "superuser")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestAuthenticate(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.Register("Login Tester", "login@example.com", "opensesame1")
	require.NoError(t, err)

	t.Run("accepts valid credentials", func(t *testing.T) {
		got, err := svc.Authenticate("login@example.com", "opensesame1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotNil(t, got.LastLoginAt)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("login@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("rejects an unknown email", func(t *testing.T) {
		_, err := svc.Authenticate("nobody@example.com", "opensesame1")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("rejects a suspended account", func(t *testing.T) {
		suspended, err := svc.Register("Suspended", "suspended@example.com", "opensesame1")
		require.NoError(t, err)
		require.NoError(t, db.Model(suspended).Update("status", entities.AccountStatusSuspended).Error)

		_, err = svc.Authenticate("suspended@example.com", "opensesame1")
		assert.ErrorIs(t, err, ErrAccountSuspended)
	})

	t.Run("locks the account after repeated failures", func(t *testing.T) {
		locked, err := svc.Register("Lockout", "lockout@example.com", "opensesame1")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = svc.Authenticate("lockout@example.com", "wrong-password")
			assert.Error(t, err)
		}

		// Even the right password is refused while locked
		_, err = svc.Authenticate("lockout@example.com", "opensesame1")
		assert.ErrorIs(t, err, ErrAccountLocked)

		var stored entities.User
		require.NoError(t, db.First(&stored, locked.ID).Error)
		assert.NotNil(t, stored.LockedUntil)
		assert.Equal(t, 3, stored.FailedLoginCount)
	})

	t.Run("successful login resets the failure counter", func(t *testing.T) {
		fresh, err := svc.Register("Resetter", "reset@example.com", "opensesame1")
		require.NoError(t, err)

		_, err = svc.Authenticate("reset@example.com", "wrong-password")
		assert.Error(t, err)

		_, err = svc.Authenticate("reset@example.com", "opensesame1")
		require.NoError(t, err)

		var stored entities.User
		require.NoError(t, db.First(&stored, fresh.ID).Error)
		assert.Equal(t, 0, stored.FailedLoginCount)
		assert.Nil(t, stored.LockedUntil)
	})
}

func TestChangePassword(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.Register("Changer", "change@example.com", "old-password-1")
	require.NoError(t, err)

	t.Run("requires the old password", func(t *testing.T) {
		err := svc.ChangePassword(user.ID, "not-the-old-one", "new-password-1")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("changes the password", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(user.ID, "old-password-1", "new-password-1"))

		_, err := svc.Authenticate("change@example.com", "old-password-1")
		assert.Error(t, err)

		_, err = svc.Authenticate("change@example.com", "new-password-1")
		assert.NoError(t, err)
	})
}
