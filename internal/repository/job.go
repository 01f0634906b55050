package repository

import (
	"context"
	"time"

	"github.com/hookq/hookq/internal/domain"
)

// Usecase, worker and monitor depend on this interface, not on the
// concrete implementation. This way we get: 1) can swap DB later
// without touching callers 2) tests can pass a fake implementation.
type JobRepository interface {
	// Create inserts the job. A unique_id conflict surfaces as
	// domain.ErrDuplicateFingerprint.
	Create(ctx context.Context, job *domain.Job) (*domain.Job, error)
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	GetByFingerprint(ctx context.Context, fp string) (*domain.Job, error)

	// ClaimNext atomically moves the earliest-created eligible Pending
	// job to Running (attempts+1, check_in=now) and returns it. Rows
	// locked by concurrent claimers are skipped. Returns nil when no
	// job is eligible.
	ClaimNext(ctx context.Context, now time.Time) (*domain.Job, error)

	// Update writes the mutable fields of the row identified by job.ID
	// (status, counters, body, next_run_at, check_in, updated_at).
	Update(ctx context.Context, job *domain.Job) error

	// FindStaleRunning returns the oldest Running job whose lease
	// looks abandoned: check_in <= cutoff, or check_in unset and
	// updated_at <= cutoff. Returns nil when there is none.
	FindStaleRunning(ctx context.Context, cutoff time.Time) (*domain.Job, error)

	// CountEligible counts Pending jobs runnable as of now.
	CountEligible(ctx context.Context, now time.Time) (int64, error)
}
