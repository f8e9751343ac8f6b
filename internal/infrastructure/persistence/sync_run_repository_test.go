package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/brickdesk/backend/internal/domain/sync"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockSyncRunRepository(t *testing.T) (*GormSyncRunRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, sqlDB := newMockDB(t)
	return NewGormSyncRunRepository(db), mock, sqlDB
}

func syncRunRows(run *sync.Run) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "job_type", "mode", "status", "started_at",
		"completed_at", "from_cursor", "to_cursor",
		"processed", "created", "updated", "skipped", "error_message",
	}).AddRow(
		run.ID, run.UserID, string(run.JobType), string(run.Mode), string(run.Status),
		run.StartedAt, run.CompletedAt, run.FromCursor, run.ToCursor,
		run.Counts.Processed, run.Counts.Created, run.Counts.Updated, run.Counts.Skipped,
		run.ErrorMessage,
	)
}

func TestGormSyncRunRepository_TryStart(t *testing.T) {
	t.Run("inserts a running run", func(t *testing.T) {
		repo, mock, mockDB := newMockSyncRunRepository(t)
		defer mockDB.Close()

		run := sync.NewRun(uuid.New(), sync.JobTypeBrickLinkOrders, sync.ModeIncremental, "")

		mock.ExpectExec(`INSERT INTO "sync_runs" .* ON CONFLICT DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.TryStart(context.Background(), run)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a conflicting insert to already running", func(t *testing.T) {
		repo, mock, mockDB := newMockSyncRunRepository(t)
		defer mockDB.Close()

		run := sync.NewRun(uuid.New(), sync.JobTypeBrickLinkOrders, sync.ModeIncremental, "")

		mock.ExpectExec(`INSERT INTO "sync_runs" .* ON CONFLICT DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.TryStart(context.Background(), run)

		assert.ErrorIs(t, err, sync.ErrSyncAlreadyRunning)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSyncRunRepository_FindRunning(t *testing.T) {
	t.Run("finds the running run", func(t *testing.T) {
		repo, mock, mockDB := newMockSyncRunRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		run := sync.NewRun(userID, sync.JobTypeEbayOrders, sync.ModeFull, "")

		mock.ExpectQuery(`SELECT \* FROM "sync_runs" WHERE user_id = \$1 AND job_type = \$2 AND status = \$3 ORDER BY .* LIMIT .*`).
			WithArgs(userID, "ebay_orders", "RUNNING", 1).
			WillReturnRows(syncRunRows(run))

		found, err := repo.FindRunning(context.Background(), userID, sync.JobTypeEbayOrders)

		require.NoError(t, err)
		assert.Equal(t, run.ID, found.ID)
		assert.Equal(t, sync.RunStatusRunning, found.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing is running", func(t *testing.T) {
		repo, mock, mockDB := newMockSyncRunRepository(t)
		defer mockDB.Close()

		userID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "sync_runs"`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindRunning(context.Background(), userID, sync.JobTypeEbayOrders)

		assert.ErrorIs(t, err, sync.ErrRunNotFound)
	})
}

func TestGormSyncRunRepository_FindLatest(t *testing.T) {
	t.Run("orders by started_at descending", func(t *testing.T) {
		repo, mock, mockDB := newMockSyncRunRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		run := sync.NewRun(userID, sync.JobTypePayPalTransactions, sync.ModeIncremental, "")
		run.Complete(sync.Counts{Processed: 7, Created: 2, Updated: 1, Skipped: 4}, "2025-08-01T00:00:00Z")

		mock.ExpectQuery(`SELECT \* FROM "sync_runs" WHERE user_id = \$1 AND job_type = \$2 ORDER BY started_at DESC,.* LIMIT .*`).
			WithArgs(userID, "paypal_transactions", 1).
			WillReturnRows(syncRunRows(run))

		found, err := repo.FindLatest(context.Background(), userID, sync.JobTypePayPalTransactions)

		require.NoError(t, err)
		assert.Equal(t, sync.RunStatusCompleted, found.Status)
		assert.Equal(t, 7, found.Counts.Processed)
		assert.Equal(t, "2025-08-01T00:00:00Z", found.ToCursor)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSyncRunRepository_List(t *testing.T) {
	t.Run("applies status filter and paging", func(t *testing.T) {
		repo, mock, mockDB := newMockSyncRunRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		status := sync.RunStatusFailed
		run := sync.NewRun(userID, sync.JobTypeAmazonOrders, sync.ModeFull, "")
		run.Fail("credentials expired", sync.Counts{})

		mock.ExpectQuery(`SELECT count\(\*\) FROM "sync_runs" WHERE user_id = \$1 AND job_type = \$2 AND status = \$3`).
			WithArgs(userID, "amazon_orders", "FAILED").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery(`SELECT \* FROM "sync_runs" WHERE user_id = \$1 AND job_type = \$2 AND status = \$3 ORDER BY started_at DESC LIMIT .*`).
			WithArgs(userID, "amazon_orders", "FAILED", 10).
			WillReturnRows(syncRunRows(run))

		runs, total, err := repo.List(context.Background(), userID, sync.JobTypeAmazonOrders,
			sync.RunFilter{Status: &status, Page: 1, PageSize: 10})

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, runs, 1)
		assert.Equal(t, "credentials expired", runs[0].ErrorMessage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSyncRunRepository_FailAbandoned(t *testing.T) {
	t.Run("fails stale running runs", func(t *testing.T) {
		repo, mock, mockDB := newMockSyncRunRepository(t)
		defer mockDB.Close()

		cutoff := time.Now().Add(-2 * time.Hour)

		mock.ExpectExec(`UPDATE "sync_runs" SET`).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.FailAbandoned(context.Background(), cutoff, "abandoned by janitor")

		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
