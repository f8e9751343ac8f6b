package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncapp "github.com/brickdesk/backend/internal/application/sync"
	"github.com/brickdesk/backend/internal/domain/sync"
	"github.com/brickdesk/backend/internal/interfaces/http/dto"
)

// Stub sync repositories

type stubRunRepository struct {
	running *sync.Run
	latest  *sync.Run
	runs    []sync.Run
}

func (s *stubRunRepository) TryStart(ctx context.Context, run *sync.Run) error { return nil }
func (s *stubRunRepository) Update(ctx context.Context, run *sync.Run) error   { return nil }

func (s *stubRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.Run, error) {
	return nil, sync.ErrRunNotFound
}

func (s *stubRunRepository) FindRunning(ctx context.Context, userID uuid.UUID, jobType sync.JobType) (*sync.Run, error) {
	if s.running == nil {
		return nil, sync.ErrRunNotFound
	}
	return s.running, nil
}

func (s *stubRunRepository) FindLatest(ctx context.Context, userID uuid.UUID, jobType sync.JobType) (*sync.Run, error) {
	if s.latest == nil {
		return nil, sync.ErrRunNotFound
	}
	return s.latest, nil
}

func (s *stubRunRepository) List(ctx context.Context, userID uuid.UUID, jobType sync.JobType, filter sync.RunFilter) ([]sync.Run, int64, error) {
	return s.runs, int64(len(s.runs)), nil
}

func (s *stubRunRepository) FailAbandoned(ctx context.Context, startedBefore time.Time, message string) (int64, error) {
	return 0, nil
}

type stubCursorRepository struct {
	cursor *sync.Cursor
	saved  *sync.Cursor
}

func (s *stubCursorRepository) Find(ctx context.Context, userID uuid.UUID, jobType sync.JobType) (*sync.Cursor, error) {
	if s.cursor == nil {
		return nil, sync.ErrCursorNotFound
	}
	return s.cursor, nil
}

func (s *stubCursorRepository) Save(ctx context.Context, cursor *sync.Cursor) error {
	s.saved = cursor
	return nil
}

func (s *stubCursorRepository) FindDue(ctx context.Context, now time.Time) ([]sync.Cursor, error) {
	return nil, nil
}

var (
	_ sync.RunRepository    = (*stubRunRepository)(nil)
	_ sync.CursorRepository = (*stubCursorRepository)(nil)
)

func setupSyncTestHandler() (*SyncHandler, *stubRunRepository, *stubCursorRepository) {
	gin.SetMode(gin.TestMode)

	runs := &stubRunRepository{}
	cursors := &stubCursorRepository{}
	service := syncapp.NewService(nil, runs, cursors, zap.NewNop())
	return NewSyncHandler(service), runs, cursors
}

func TestSyncHandler_Status(t *testing.T) {
	handler, runs, cursors := setupSyncTestHandler()

	userID := uuid.New()
	running := sync.NewRun(userID, sync.JobTypeBrickLinkOrders, sync.ModeIncremental, "2025-07-01T00:00:00Z")
	runs.running = running
	cursor := sync.NewCursor(userID, sync.JobTypeBrickLinkOrders)
	cursor.Advance(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	cursors.cursor = cursor

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodGet, "/sync/bricklink_orders/status", nil)
	c.Params = gin.Params{{Key: "jobType", Value: "bricklink_orders"}}

	handler.Status(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "bricklink_orders", data["job_type"])
	assert.Equal(t, true, data["is_running"])

	lastRun := data["last_run"].(map[string]interface{})
	assert.Equal(t, "RUNNING", lastRun["status"])
	assert.Equal(t, "2025-07-01T00:00:00Z", lastRun["from_cursor"])

	curResp := data["cursor"].(map[string]interface{})
	assert.Equal(t, "2025-07-01T00:00:00Z", curResp["last_cursor_value"])
}

func TestSyncHandler_Status_UnknownJobType(t *testing.T) {
	handler, _, _ := setupSyncTestHandler()

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New())
	c.Request, _ = http.NewRequest(http.MethodGet, "/sync/carrier_pigeon/status", nil)
	c.Params = gin.Params{{Key: "jobType", Value: "carrier_pigeon"}}

	handler.Status(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_Trigger_RejectsHalfWindow(t *testing.T) {
	handler, _, _ := setupSyncTestHandler()

	body := []byte(`{"from_date": "2024-01-01"}`)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New())
	c.Request, _ = http.NewRequest(http.MethodPost, "/sync/bricklink_orders/trigger", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "jobType", Value: "bricklink_orders"}}

	handler.Trigger(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_Trigger_RejectsMalformedDate(t *testing.T) {
	handler, _, _ := setupSyncTestHandler()

	body := []byte(`{"from_date": "01/02/2024", "to_date": "2024-03-01"}`)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New())
	c.Request, _ = http.NewRequest(http.MethodPost, "/sync/bricklink_orders/trigger", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "jobType", Value: "bricklink_orders"}}

	handler.Trigger(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_Trigger_RequiresIdentity(t *testing.T) {
	handler, _, _ := setupSyncTestHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/sync/bricklink_orders/trigger", nil)
	c.Params = gin.Params{{Key: "jobType", Value: "bricklink_orders"}}

	handler.Trigger(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncHandler_Runs(t *testing.T) {
	handler, runs, _ := setupSyncTestHandler()

	userID := uuid.New()
	run := sync.NewRun(userID, sync.JobTypeEbayOrders, sync.ModeFull, "")
	run.Complete(sync.Counts{Processed: 5, Created: 3, Skipped: 2}, "2025-08-01T00:00:00Z")
	runs.runs = []sync.Run{*run}

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodGet, "/sync/ebay_orders/runs?page=1&page_size=10", nil)
	c.Params = gin.Params{{Key: "jobType", Value: "ebay_orders"}}

	handler.Runs(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)

	items := resp.Data.([]interface{})
	require.Len(t, items, 1)
	entry := items[0].(map[string]interface{})
	assert.Equal(t, "COMPLETED", entry["status"])
	counts := entry["counts"].(map[string]interface{})
	assert.Equal(t, float64(5), counts["processed"])
}

func TestSyncHandler_Runs_RejectsUnknownStatusFilter(t *testing.T) {
	handler, _, _ := setupSyncTestHandler()

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New())
	c.Request, _ = http.NewRequest(http.MethodGet, "/sync/ebay_orders/runs?status=EXPLODED", nil)
	c.Params = gin.Params{{Key: "jobType", Value: "ebay_orders"}}

	handler.Runs(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_UpdateAutoSync(t *testing.T) {
	handler, _, cursors := setupSyncTestHandler()

	body := []byte(`{"enabled": true, "interval_hours": 6}`)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New())
	c.Request, _ = http.NewRequest(http.MethodPut, "/sync/paypal_transactions/auto", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "jobType", Value: "paypal_transactions"}}

	handler.UpdateAutoSync(c)

	assert.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, cursors.saved)
	assert.True(t, cursors.saved.AutoSyncEnabled)
	assert.Equal(t, 6, cursors.saved.AutoSyncIntervalHours)
	require.NotNil(t, cursors.saved.NextRunAt)
}

func TestSyncHandler_UpdateAutoSync_RequiresInterval(t *testing.T) {
	handler, _, cursors := setupSyncTestHandler()

	body := []byte(`{"enabled": true}`)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New())
	c.Request, _ = http.NewRequest(http.MethodPut, "/sync/paypal_transactions/auto", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "jobType", Value: "paypal_transactions"}}

	handler.UpdateAutoSync(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, cursors.saved)
}
