package scheduler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"

	"github.com/hookq/hookq/internal/domain"
	"github.com/hookq/hookq/internal/metrics"
	"github.com/hookq/hookq/internal/ratelimit"
	"github.com/hookq/hookq/internal/repository"
	"github.com/hookq/hookq/internal/schedule"
)

const (
	// maxAttempts bounds the loop between worker failures and monitor
	// rescue: a job exceeding it settles as Failure.
	maxAttempts = 10

	idlePoll = 5 * time.Second
)

// Worker runs the claim → execute → settle loop. Multiple workers may
// run concurrently, in one process or many; the database row lock is
// the only coordination between them.
type Worker struct {
	repo   repository.JobRepository
	gate   *ratelimit.Gate
	caller Caller
	logger *slog.Logger
}

func NewWorker(repo repository.JobRepository, gate *ratelimit.Gate, caller Caller, logger *slog.Logger) *Worker {
	return &Worker{
		repo:   repo,
		gate:   gate,
		caller: caller,
		logger: logger.With("component", "worker"),
	}
}

func (w *Worker) Start(ctx context.Context) {
	metrics.WorkerStartTime.SetToCurrentTime()
	w.logger.Info("worker started")

	for {
		if ctx.Err() != nil {
			metrics.WorkerShutdownsTotal.Inc()
			w.logger.Info("worker shut down")
			return
		}

		job, err := w.repo.ClaimNext(ctx, time.Now().UTC())
		if err != nil {
			// Transient: skip this iteration, the next poll retries.
			w.logger.Error("claim job", "error", err)
			sleepCtx(ctx, idlePoll+schedule.PickupJitter())
			continue
		}
		if job == nil {
			w.logger.Debug("no pending jobs")
			sleepCtx(ctx, idlePoll+schedule.PickupJitter())
			continue
		}

		w.process(ctx, job)
	}
}

// process drives one claimed job through validation, rate limiting,
// execution and settlement.
func (w *Worker) process(ctx context.Context, job *domain.Job) {
	start := time.Now()
	defer func() {
		metrics.JobExecutionDuration.Observe(time.Since(start).Seconds())
	}()

	now := time.Now().UTC()
	lag := now.Sub(job.NextRunAt).Seconds()
	if lag < 0 {
		lag = 0
	}
	metrics.JobQueueLag.Observe(lag)

	logger := w.logger.With("job_id", job.ID)
	logger.Info("job picked up", "method", job.Method, "url", job.URL, "attempt", job.Attempts)

	if !validMethod(job.Method) {
		logger.Error("invalid HTTP method", "method", job.Method)
		w.markFailure(ctx, job, logger)
		return
	}

	u, err := url.Parse(job.URL)
	if err != nil {
		logger.Error("parse job URL", "url", job.URL, "error", err)
		w.markFailure(ctx, job, logger)
		return
	}
	host := u.Hostname()
	if host == "" {
		logger.Error("job URL has no host", "url", job.URL)
		w.markFailure(ctx, job, logger)
		return
	}

	if admitted, retryAt := w.gate.Check(host); !admitted {
		w.deferRateLimited(ctx, job, host, retryAt, logger)
		return
	}

	res := w.caller.Call(ctx, job)
	w.settle(ctx, job, res, logger)
}

// markFailure terminates a job that can never execute (bad method or
// URL). Leaving it Running would keep it bouncing off the monitor.
func (w *Worker) markFailure(ctx context.Context, job *domain.Job, logger *slog.Logger) {
	job.Status = domain.StatusFailure
	job.UpdatedAt = time.Now().UTC()
	if err := w.repo.Update(ctx, job); err != nil {
		logger.Error("mark job failed", "error", err)
	}
}

// deferRateLimited puts the job back to Pending at the limiter's
// release instant and rolls back the attempt increment from the claim:
// a deferral must not consume any retry budget.
func (w *Worker) deferRateLimited(ctx context.Context, job *domain.Job, host string, retryAt time.Time, logger *slog.Logger) {
	attempts := max0(job.Attempts - 1)
	job.Attempts = attempts
	job.Retries = max0(attempts - 1)
	job.Status = domain.StatusPending
	job.NextRunAt = retryAt.UTC()
	job.UpdatedAt = time.Now().UTC()

	if err := w.repo.Update(ctx, job); err != nil {
		logger.Error("defer rate-limited job", "error", err)
		return
	}
	logger.Warn("rate limited", "host", host, "retry_at", retryAt.UTC())
}

func (w *Worker) settle(ctx context.Context, job *domain.Job, res Result, logger *slog.Logger) {
	now := time.Now().UTC()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if job.Recurring() {
			if next, ok := schedule.NextCron(*job.Cron, now); ok {
				job.Status = domain.StatusPending
				job.NextRunAt = next.UTC()
				job.Attempts = 0
			} else {
				job.Status = domain.StatusFailure
				logger.Error("invalid cron expression", "cron", *job.Cron)
			}
		} else {
			job.Status = domain.StatusSuccess
		}
		job.Retries = max0(job.Attempts - 1)

		// Response bodies that are not JSON settle as null.
		if json.Valid([]byte(res.Body)) {
			job.Body = json.RawMessage(res.Body)
		} else {
			job.Body = json.RawMessage("null")
		}
		metrics.JobExecutionResult.WithLabelValues("success").Inc()
	} else {
		job.Retries = max0(job.Attempts - 1)
		if job.Attempts >= maxAttempts {
			job.Status = domain.StatusFailure
		} else {
			job.Status = domain.StatusPending
			job.NextRunAt = now.Add(schedule.Backoff(job.Attempts))
		}
		metrics.JobExecutionResult.WithLabelValues("failure").Inc()
	}
	job.UpdatedAt = now

	if err := w.repo.Update(ctx, job); err != nil {
		logger.Error("settle job", "error", err)
		return
	}
	logger.Info("job settled", "status", job.Status, "code", res.StatusCode, "attempts", job.Attempts)
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// validMethod reports whether m is a valid HTTP method token (RFC 7230).
func validMethod(m string) bool {
	if m == "" {
		return false
	}
	for i := 0; i < len(m); i++ {
		if !isTokenChar(m[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// sleepCtx waits for d or until ctx is cancelled, whichever is first.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
