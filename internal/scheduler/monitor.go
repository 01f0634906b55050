package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/hookq/hookq/internal/domain"
	"github.com/hookq/hookq/internal/metrics"
	"github.com/hookq/hookq/internal/repository"
)

const (
	// A Running row whose lease has not been touched for this long is
	// treated as abandoned by a dead worker.
	leaseTimeout = 30 * time.Second

	monitorIdle = 5 * time.Second
)

// Monitor sweeps for Running jobs whose worker stopped checking in and
// returns them to Pending so another worker can pick them up. It also
// samples the queue depth gauge each pass.
type Monitor struct {
	repo   repository.JobRepository
	logger *slog.Logger
}

func NewMonitor(repo repository.JobRepository, logger *slog.Logger) *Monitor {
	return &Monitor{
		repo:   repo,
		logger: logger.With("component", "monitor"),
	}
}

func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("monitor started", "lease_timeout", leaseTimeout)

	for {
		if ctx.Err() != nil {
			m.logger.Info("monitor shut down")
			return
		}

		if !m.sweep(ctx) {
			sleepCtx(ctx, monitorIdle)
		}
		m.sampleDepth(ctx)
	}
}

// sweep rescues at most one stale job and reports whether it found any.
func (m *Monitor) sweep(ctx context.Context) bool {
	cutoff := time.Now().UTC().Add(-leaseTimeout)

	job, err := m.repo.FindStaleRunning(ctx, cutoff)
	if err != nil {
		m.logger.Error("find stale running job", "error", err)
		return false
	}
	if job == nil {
		return false
	}

	// Refreshing check_in keeps the same row from being re-reaped on
	// the very next pass.
	now := time.Now().UTC()
	job.Status = domain.StatusPending
	job.CheckIn = &now

	if err := m.repo.Update(ctx, job); err != nil {
		m.logger.Error("requeue stale job", "job_id", job.ID, "error", err)
		return true
	}
	m.logger.Warn("requeued stale job", "job_id", job.ID, "attempts", job.Attempts)
	return true
}

func (m *Monitor) sampleDepth(ctx context.Context) {
	count, err := m.repo.CountEligible(ctx, time.Now().UTC())
	if err != nil {
		m.logger.Error("count eligible jobs", "error", err)
		return
	}
	metrics.JobQueueDepth.Set(float64(count))
}
