package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/sync"
)

// Reconciler performs the idempotent upsert of one batch of canonical
// records, returning created/updated/skipped accounting. Records are
// deduplicated by natural key before touching storage (last-wins).
type Reconciler interface {
	// Kind returns the record kind this reconciler handles
	Kind() platform.RecordKind

	// Reconcile upserts a batch for one user. The returned counts carry
	// Created/Updated/Skipped; Processed is accounted by the coordinator.
	Reconcile(ctx context.Context, userID uuid.UUID, records []platform.CanonicalRecord) (sync.Counts, error)
}

// Job binds one job type to its source, normalizer, reconciler and
// platform tuning
type Job struct {
	Type       sync.JobType
	Source     platform.Source
	Normalizer platform.Normalizer
	Reconciler Reconciler

	// PageSize is the per-call batch size, at most Source.MaxPageSize
	PageSize int
	// InterBatchDelay is the fixed delay between page fetches, sized to
	// the platform's published rate limit
	InterBatchDelay time.Duration
	// CursorOverlap is subtracted from the new cursor on success to
	// tolerate clock skew and out-of-order delivery at the source
	CursorOverlap time.Duration
	// FullWindow is how far back a FULL sync reaches (the platform's
	// useful retention)
	FullWindow time.Duration
}

// Validate checks the binding is complete and clamps the page size
func (j *Job) Validate() error {
	if !j.Type.IsValid() {
		return fmt.Errorf("sync: invalid job type %q", j.Type)
	}
	if j.Source == nil || j.Normalizer == nil || j.Reconciler == nil {
		return fmt.Errorf("sync: job %s is missing a source, normalizer or reconciler", j.Type)
	}
	if j.Source.Kind() != j.Type.Kind() || j.Normalizer.Kind() != j.Type.Kind() || j.Reconciler.Kind() != j.Type.Kind() {
		return fmt.Errorf("sync: job %s binds mismatched record kinds", j.Type)
	}
	if j.PageSize <= 0 || j.PageSize > j.Source.MaxPageSize() {
		j.PageSize = j.Source.MaxPageSize()
	}
	if j.FullWindow <= 0 {
		j.FullWindow = 365 * 24 * time.Hour
	}
	return nil
}

// Registry holds the configured sync jobs
type Registry struct {
	jobs map[sync.JobType]*Job
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[sync.JobType]*Job)}
}

// Register adds a job binding
func (r *Registry) Register(job *Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	if _, exists := r.jobs[job.Type]; exists {
		return fmt.Errorf("sync: job %s already registered", job.Type)
	}
	r.jobs[job.Type] = job
	return nil
}

// Get returns the binding for a job type
func (r *Registry) Get(jobType sync.JobType) (*Job, error) {
	job, ok := r.jobs[jobType]
	if !ok {
		return nil, fmt.Errorf("sync: job %s not registered", jobType)
	}
	return job, nil
}

// JobTypes returns the registered job types
func (r *Registry) JobTypes() []sync.JobType {
	types := make([]sync.JobType, 0, len(r.jobs))
	for t := range r.jobs {
		types = append(types, t)
	}
	return types
}
