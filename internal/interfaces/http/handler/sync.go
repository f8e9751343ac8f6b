package handler

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	syncapp "github.com/brickdesk/backend/internal/application/sync"
	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/sync"
	"github.com/brickdesk/backend/internal/interfaces/http/dto"
)

// SyncHandler handles sync trigger, status and run-history endpoints
type SyncHandler struct {
	BaseHandler
	service *syncapp.Service
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service *syncapp.Service) *SyncHandler {
	return &SyncHandler{service: service}
}

// RegisterRoutes registers sync endpoints on the API group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	syncGroup := rg.Group("/sync")
	{
		syncGroup.POST("/:jobType/trigger", h.Trigger)
		syncGroup.GET("/:jobType/status", h.Status)
		syncGroup.GET("/:jobType/runs", h.Runs)
		syncGroup.PUT("/:jobType/auto", h.UpdateAutoSync)
	}
}

// TriggerSyncRequest represents a request to start a sync run
type TriggerSyncRequest struct {
	FullSync bool    `json:"full_sync"`
	FromDate *string `json:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   *string `json:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateAutoSyncRequest represents a request to change a job's
// auto-sync schedule
type UpdateAutoSyncRequest struct {
	Enabled       bool `json:"enabled"`
	IntervalHours int  `json:"interval_hours" binding:"omitempty,min=1,max=168"`
}

// RunResponse represents one sync run in API responses
type RunResponse struct {
	ID           string      `json:"id"`
	JobType      string      `json:"job_type"`
	Mode         string      `json:"mode"`
	Status       string      `json:"status"`
	StartedAt    string      `json:"started_at"`
	CompletedAt  *string     `json:"completed_at,omitempty"`
	FromCursor   string      `json:"from_cursor,omitempty"`
	ToCursor     string      `json:"to_cursor,omitempty"`
	Counts       sync.Counts `json:"counts"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// CursorResponse represents a job's sync cursor in API responses
type CursorResponse struct {
	LastCursorValue             string  `json:"last_cursor_value,omitempty"`
	AutoSyncEnabled             bool    `json:"auto_sync_enabled"`
	AutoSyncIntervalHours       int     `json:"auto_sync_interval_hours,omitempty"`
	NextRunAt                   *string `json:"next_run_at,omitempty"`
	HistoricalImportCompletedAt *string `json:"historical_import_completed_at,omitempty"`
	UpdatedAt                   string  `json:"updated_at"`
}

// SyncStatusResponse represents the current sync state of one job
type SyncStatusResponse struct {
	JobType   string          `json:"job_type"`
	IsRunning bool            `json:"is_running"`
	LastRun   *RunResponse    `json:"last_run,omitempty"`
	Cursor    *CursorResponse `json:"cursor,omitempty"`
}

// Trigger starts a sync run for the job type in the path. The run
// executes in the background; the response carries the RUNNING ledger
// row so the caller can poll its status.
// POST /api/v1/sync/:jobType/trigger
func (h *SyncHandler) Trigger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	jobType, ok := parseJobType(c)
	if !ok {
		h.BadRequest(c, "Unknown job type: "+c.Param("jobType"))
		return
	}

	var req TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BadRequest(c, err.Error())
		return
	}

	opts := syncapp.Options{FullSync: req.FullSync}
	if req.FromDate != nil {
		t, err := time.Parse("2006-01-02", *req.FromDate)
		if err != nil {
			h.BadRequest(c, "Invalid from_date")
			return
		}
		opts.FromDate = &t
	}
	if req.ToDate != nil {
		t, err := time.Parse("2006-01-02", *req.ToDate)
		if err != nil {
			h.BadRequest(c, "Invalid to_date")
			return
		}
		opts.ToDate = &t
	}
	if (opts.FromDate == nil) != (opts.ToDate == nil) {
		h.BadRequest(c, "from_date and to_date must be provided together")
		return
	}

	run, err := h.service.Trigger(c.Request.Context(), userID, jobType, opts)
	if err != nil {
		h.syncError(c, err)
		return
	}
	h.Accepted(c, toRunResponse(run))
}

// Status returns the current sync state for a job.
// GET /api/v1/sync/:jobType/status
func (h *SyncHandler) Status(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	jobType, ok := parseJobType(c)
	if !ok {
		h.BadRequest(c, "Unknown job type: "+c.Param("jobType"))
		return
	}

	status, err := h.service.GetStatus(c.Request.Context(), userID, jobType)
	if err != nil {
		h.Internal(c, "Failed to load sync status")
		return
	}

	resp := SyncStatusResponse{
		JobType:   string(status.JobType),
		IsRunning: status.IsRunning,
	}
	if status.LastRun != nil {
		resp.LastRun = toRunResponse(status.LastRun)
	}
	if status.Cursor != nil {
		resp.Cursor = toCursorResponse(status.Cursor)
	}
	h.Success(c, resp)
}

// Runs returns paged run history for a job.
// GET /api/v1/sync/:jobType/runs
func (h *SyncHandler) Runs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	jobType, ok := parseJobType(c)
	if !ok {
		h.BadRequest(c, "Unknown job type: "+c.Param("jobType"))
		return
	}

	filter := sync.RunFilter{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
	}
	if s := c.Query("status"); s != "" {
		rs := sync.RunStatus(s)
		if !rs.IsValid() {
			h.BadRequest(c, "Unknown run status: "+s)
			return
		}
		filter.Status = &rs
	}
	if m := c.Query("mode"); m != "" {
		mode := sync.Mode(m)
		if !mode.IsValid() {
			h.BadRequest(c, "Unknown run mode: "+m)
			return
		}
		filter.Mode = &mode
	}

	runs, total, err := h.service.ListRuns(c.Request.Context(), userID, jobType, filter)
	if err != nil {
		h.Internal(c, "Failed to list sync runs")
		return
	}

	resp := make([]RunResponse, 0, len(runs))
	for i := range runs {
		resp = append(resp, *toRunResponse(&runs[i]))
	}
	h.SuccessWithMeta(c, resp, total, filter.Page, filter.PageSize)
}

// UpdateAutoSync changes a job's auto-sync schedule.
// PUT /api/v1/sync/:jobType/auto
func (h *SyncHandler) UpdateAutoSync(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	jobType, ok := parseJobType(c)
	if !ok {
		h.BadRequest(c, "Unknown job type: "+c.Param("jobType"))
		return
	}

	var req UpdateAutoSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Enabled && req.IntervalHours == 0 {
		h.BadRequest(c, "interval_hours is required when enabling auto-sync")
		return
	}

	cursor, err := h.service.UpdateAutoSync(c.Request.Context(), userID, jobType, req.Enabled, req.IntervalHours)
	if err != nil {
		h.Internal(c, "Failed to update auto-sync configuration")
		return
	}
	h.Success(c, toCursorResponse(cursor))
}

// syncError maps sync trigger failures to API error codes
func (h *SyncHandler) syncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sync.ErrSyncAlreadyRunning):
		h.Conflict(c, dto.ErrCodeSyncAlreadyRunning, "A sync run for this job is already in progress")
	case errors.Is(err, platform.ErrCredentialsMissing):
		h.ErrorWithCode(c, dto.ErrCodeCredentialsMissing, "Platform credentials are not configured")
	case errors.Is(err, platform.ErrCredentialsExpired):
		h.ErrorWithCode(c, dto.ErrCodeCredentialsExpired, "Platform credentials have expired")
	default:
		h.DomainError(c, err)
	}
}

func parseJobType(c *gin.Context) (sync.JobType, bool) {
	jobType := sync.JobType(c.Param("jobType"))
	return jobType, jobType.IsValid()
}

func toRunResponse(r *sync.Run) *RunResponse {
	resp := &RunResponse{
		ID:           r.ID.String(),
		JobType:      string(r.JobType),
		Mode:         string(r.Mode),
		Status:       string(r.Status),
		StartedAt:    r.StartedAt.UTC().Format(time.RFC3339),
		FromCursor:   r.FromCursor,
		ToCursor:     r.ToCursor,
		Counts:       r.Counts,
		ErrorMessage: r.ErrorMessage,
	}
	if r.CompletedAt != nil {
		s := r.CompletedAt.UTC().Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}

func toCursorResponse(cur *sync.Cursor) *CursorResponse {
	resp := &CursorResponse{
		LastCursorValue:       cur.LastCursorValue,
		AutoSyncEnabled:       cur.AutoSyncEnabled,
		AutoSyncIntervalHours: cur.AutoSyncIntervalHours,
		UpdatedAt:             cur.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if cur.NextRunAt != nil {
		s := cur.NextRunAt.UTC().Format(time.RFC3339)
		resp.NextRunAt = &s
	}
	if cur.HistoricalImportCompletedAt != nil {
		s := cur.HistoricalImportCompletedAt.UTC().Format(time.RFC3339)
		resp.HistoricalImportCompletedAt = &s
	}
	return resp
}
