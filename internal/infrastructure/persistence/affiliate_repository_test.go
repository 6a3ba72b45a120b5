package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/affiliate"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAffiliateTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.AffiliateModel{})
	require.NoError(t, err)

	return db
}

func newTestAffiliate(t *testing.T, code string, status affiliate.Status) *affiliate.Affiliate {
	t.Helper()

	a, err := affiliate.NewAffiliate("Test Partner", "partner@example.com", code, decimal.NewFromInt(15))
	require.NoError(t, err)
	a.Status = status
	return a
}

func TestGormAffiliateRepository_FindActiveByCode(t *testing.T) {
	db := setupAffiliateTestDB(t)
	repo := NewGormAffiliateRepository(db)
	ctx := context.Background()

	active := newTestAffiliate(t, "ERIK-482", affiliate.StatusActive)
	suspended := newTestAffiliate(t, "LISA-917", affiliate.StatusSuspended)
	pending := newTestAffiliate(t, "ANNA-703", affiliate.StatusPending)
	for _, a := range []*affiliate.Affiliate{active, suspended, pending} {
		require.NoError(t, repo.Save(ctx, a))
	}

	t.Run("finds active affiliate", func(t *testing.T) {
		got, err := repo.FindActiveByCode(ctx, "ERIK-482")
		require.NoError(t, err)
		assert.Equal(t, active.ID, got.ID)
		assert.Equal(t, "ERIK-482", got.Code)
	})

	t.Run("lookup is case insensitive", func(t *testing.T) {
		got, err := repo.FindActiveByCode(ctx, "erik-482")
		require.NoError(t, err)
		assert.Equal(t, active.ID, got.ID)
	})

	t.Run("suspended affiliate behaves as absent", func(t *testing.T) {
		_, err := repo.FindActiveByCode(ctx, "LISA-917")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("pending affiliate behaves as absent", func(t *testing.T) {
		_, err := repo.FindActiveByCode(ctx, "ANNA-703")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown code returns ErrNotFound", func(t *testing.T) {
		_, err := repo.FindActiveByCode(ctx, "NOPE-000")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormAffiliateRepository_FindActiveByDiscountCode(t *testing.T) {
	db := setupAffiliateTestDB(t)
	repo := NewGormAffiliateRepository(db)
	ctx := context.Background()

	a := newTestAffiliate(t, "ERIK-482", affiliate.StatusActive)
	a.SetDiscountCode("SUMMER20")
	require.NoError(t, repo.Save(ctx, a))

	t.Run("finds affiliate by mapped promotion code", func(t *testing.T) {
		got, err := repo.FindActiveByDiscountCode(ctx, "SUMMER20")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
	})

	t.Run("empty code short-circuits to ErrNotFound", func(t *testing.T) {
		_, err := repo.FindActiveByDiscountCode(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unmapped code returns ErrNotFound", func(t *testing.T) {
		_, err := repo.FindActiveByDiscountCode(ctx, "WINTER10")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormAffiliateRepository_IncrementClicks(t *testing.T) {
	db := setupAffiliateTestDB(t)
	repo := NewGormAffiliateRepository(db)
	ctx := context.Background()

	a := newTestAffiliate(t, "ERIK-482", affiliate.StatusActive)
	require.NoError(t, repo.Save(ctx, a))

	t.Run("bumps the click counter", func(t *testing.T) {
		require.NoError(t, repo.IncrementClicks(ctx, a.ID))
		require.NoError(t, repo.IncrementClicks(ctx, a.ID))

		got, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Stats.Clicks)
	})

	t.Run("unknown affiliate returns ErrNotFound", func(t *testing.T) {
		err := repo.IncrementClicks(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormAffiliateRepository_List(t *testing.T) {
	db := setupAffiliateTestDB(t)
	repo := NewGormAffiliateRepository(db)
	ctx := context.Background()

	for _, code := range []string{"ERIK-482", "LISA-917", "ANNA-703"} {
		require.NoError(t, repo.Save(ctx, newTestAffiliate(t, code, affiliate.StatusActive)))
	}

	t.Run("lists all with pagination", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2

		items, total, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 2)
	})

	t.Run("filters by search term", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "erik"

		items, total, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "ERIK-482", items[0].Code)
	})

	t.Run("ignores unknown sort columns", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "code; DROP TABLE affiliates"

		_, _, err := repo.List(ctx, filter)
		assert.NoError(t, err)
	})
}
