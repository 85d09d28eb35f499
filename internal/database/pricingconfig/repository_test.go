package pricingconfig

import (
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirudev/bookstack/internal/database"
)

func setupTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()

	dbPath := "./test_pricingconfig_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), cleanup
}

func TestRepository_Get(t *testing.T) {
	t.Run("missing configuration is an error", func(t *testing.T) {
		repo, cleanup := setupTestRepo(t)
		defer cleanup()

		_, err := repo.Get()
		assert.ErrorIs(t, err, ErrConfigMissing)
	})

	t.Run("returns the seeded row", func(t *testing.T) {
		repo, cleanup := setupTestRepo(t)
		defer cleanup()

		_, err := repo.Create(decimal.RequireFromString("6.00"), decimal.RequireFromString("3.00"))
		require.NoError(t, err)

		cfg, err := repo.Get()
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("6.00").Equal(cfg.TierOneRatePerDay))
		assert.True(t, decimal.RequireFromString("3.00").Equal(cfg.TierTwoRatePerDay))
	})
}

func TestRepository_Create(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	t.Run("rejects negative rates", func(t *testing.T) {
		_, err := repo.Create(decimal.RequireFromString("-1.00"), decimal.RequireFromString("3.00"))
		assert.ErrorIs(t, err, ErrNegativeRate)
	})

	t.Run("inserts the singleton once", func(t *testing.T) {
		_, err := repo.Create(decimal.RequireFromString("6.00"), decimal.RequireFromString("3.00"))
		require.NoError(t, err)

		_, err = repo.Create(decimal.RequireFromString("7.00"), decimal.RequireFromString("4.00"))
		assert.Error(t, err)
	})
}

func TestRepository_Update(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	t.Run("fails before the row exists", func(t *testing.T) {
		_, err := repo.Update(decimal.RequireFromString("5.00"), decimal.RequireFromString("2.50"))
		assert.ErrorIs(t, err, ErrConfigMissing)
	})

	t.Run("overwrites both rates in place", func(t *testing.T) {
		_, err := repo.Create(decimal.RequireFromString("6.00"), decimal.RequireFromString("3.00"))
		require.NoError(t, err)

		updated, err := repo.Update(decimal.RequireFromString("8.00"), decimal.RequireFromString("4.00"))
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("8.00").Equal(updated.TierOneRatePerDay))

		cfg, err := repo.Get()
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("8.00").Equal(cfg.TierOneRatePerDay))
		assert.True(t, decimal.RequireFromString("4.00").Equal(cfg.TierTwoRatePerDay))
	})

	t.Run("rejects negative rates", func(t *testing.T) {
		_, err := repo.Update(decimal.RequireFromString("8.00"), decimal.RequireFromString("-0.01"))
		assert.ErrorIs(t, err, ErrNegativeRate)
	})
}
