package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brickdesk/backend/internal/domain/sync"
	"github.com/brickdesk/backend/internal/infrastructure/persistence/models"
)

func setupCursorTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.SyncCursorModel{})
	require.NoError(t, err)

	return db
}

func TestGormSyncCursorRepository_SaveAndFind(t *testing.T) {
	db := setupCursorTestDB(t)
	repo := NewGormSyncCursorRepository(db)
	ctx := context.Background()

	t.Run("round-trips a cursor", func(t *testing.T) {
		userID := uuid.New()
		cursor := sync.NewCursor(userID, sync.JobTypeBrickLinkOrders)
		cursor.Advance(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))

		require.NoError(t, repo.Save(ctx, cursor))

		found, err := repo.Find(ctx, userID, sync.JobTypeBrickLinkOrders)
		require.NoError(t, err)
		assert.Equal(t, cursor.LastCursorValue, found.LastCursorValue)
		assert.Equal(t, time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC), found.Time())
	})

	t.Run("save is an upsert on the job key", func(t *testing.T) {
		userID := uuid.New()
		cursor := sync.NewCursor(userID, sync.JobTypeEbayOrders)
		cursor.Advance(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Save(ctx, cursor))

		cursor.Advance(time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC))
		cursor.AutoSyncEnabled = true
		cursor.AutoSyncIntervalHours = 6
		require.NoError(t, repo.Save(ctx, cursor))

		found, err := repo.Find(ctx, userID, sync.JobTypeEbayOrders)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), found.Time())
		assert.True(t, found.AutoSyncEnabled)

		var count int64
		require.NoError(t, db.Model(&models.SyncCursorModel{}).
			Where("user_id = ?", userID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("returns not found for an unseen job", func(t *testing.T) {
		_, err := repo.Find(ctx, uuid.New(), sync.JobTypePayPalTransactions)
		assert.ErrorIs(t, err, sync.ErrCursorNotFound)
	})
}

func TestGormSyncCursorRepository_FindDue(t *testing.T) {
	db := setupCursorTestDB(t)
	repo := NewGormSyncCursorRepository(db)
	ctx := context.Background()
	now := time.Now()

	due := sync.NewCursor(uuid.New(), sync.JobTypeBrickLinkOrders)
	due.AutoSyncEnabled = true
	due.AutoSyncIntervalHours = 6
	past := now.Add(-time.Hour)
	due.NextRunAt = &past
	require.NoError(t, repo.Save(ctx, due))

	notYet := sync.NewCursor(uuid.New(), sync.JobTypeEbayOrders)
	notYet.AutoSyncEnabled = true
	notYet.AutoSyncIntervalHours = 6
	future := now.Add(time.Hour)
	notYet.NextRunAt = &future
	require.NoError(t, repo.Save(ctx, notYet))

	disabled := sync.NewCursor(uuid.New(), sync.JobTypeAmazonOrders)
	require.NoError(t, repo.Save(ctx, disabled))

	found, err := repo.FindDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, due.UserID, found[0].UserID)
	assert.Equal(t, sync.JobTypeBrickLinkOrders, found[0].JobType)
}
