package repository

import (
	"testing"
	"time"

	"bazario/internal/database"
	"bazario/internal/domain"
	"bazario/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestExpireBoosts(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewListingRepository(db)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)
	lapsed := models.Listing{UserID: 1, Title: "old", PricePaise: 100, Status: domain.ListingStatusActive,
		IsBoosted: true, IsFeatured: true, BoostExpiresAt: &past}
	live := models.Listing{UserID: 1, Title: "new", PricePaise: 100, Status: domain.ListingStatusActive,
		IsBoosted: true, BoostExpiresAt: &future}
	plain := models.Listing{UserID: 1, Title: "plain", PricePaise: 100, Status: domain.ListingStatusActive}
	require.NoError(t, db.Create(&lapsed).Error)
	require.NoError(t, db.Create(&live).Error)
	require.NoError(t, db.Create(&plain).Error)

	n, err := repo.ExpireBoosts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var fresh models.Listing
	require.NoError(t, db.First(&fresh, lapsed.ID).Error)
	assert.False(t, fresh.IsBoosted)
	assert.False(t, fresh.IsFeatured)

	fresh = models.Listing{}
	require.NoError(t, db.First(&fresh, live.ID).Error)
	assert.True(t, fresh.IsBoosted)

	// A second sweep finds nothing.
	n, err = repo.ExpireBoosts()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBoostActiveHelper(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	l := models.Listing{IsBoosted: true, BoostExpiresAt: &future}
	assert.True(t, l.BoostActive(now))
	assert.False(t, l.BoostActive(now.Add(2*time.Hour)))
	assert.False(t, (&models.Listing{IsBoosted: true}).BoostActive(now))
}
