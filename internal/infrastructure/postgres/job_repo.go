package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hookq/hookq/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobColumns = `id, unique_id, url, method, headers, body, retries, attempts,
       status, next_run_at, cron, check_in, created_at, updated_at`

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	query := `
		INSERT INTO job (
			unique_id, url, method, headers, body, retries, attempts,
			status, next_run_at, cron, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + jobColumns

	row := r.pool.QueryRow(ctx, query,
		job.UniqueID,
		job.URL,
		job.Method,
		job.Headers,
		job.Body,
		job.Retries,
		job.Attempts,
		job.Status,
		job.NextRunAt,
		job.Cron,
		job.CreatedAt,
		job.UpdatedAt,
	)

	created, err := scanJob(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateFingerprint
		}
		return nil, err
	}
	return created, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM job WHERE id = $1`
	return scanJob(r.pool.QueryRow(ctx, query, id))
}

func (r *JobRepository) GetByFingerprint(ctx context.Context, fp string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM job WHERE unique_id = $1`
	return scanJob(r.pool.QueryRow(ctx, query, fp))
}

func (r *JobRepository) ClaimNext(ctx context.Context, now time.Time) (*domain.Job, error) {
	// FOR UPDATE SKIP LOCKED lets concurrent workers claim distinct
	// rows without serializing behind each other's transactions.
	query := `
		UPDATE job
		SET    status     = 'Running',
		       attempts   = attempts + 1,
		       check_in   = $1,
		       updated_at = $1
		WHERE id = (
			SELECT id FROM job
			WHERE  status = 'Pending'
			  AND  (next_run_at IS NULL OR next_run_at <= $1)
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + jobColumns

	job, err := scanJob(r.pool.QueryRow(ctx, query, now))
	if errors.Is(err, domain.ErrJobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *domain.Job) error {
	// unique_id, url, method, headers and created_at never change after
	// insert; the settle update is conditional on id only.
	_, err := r.pool.Exec(ctx, `
		UPDATE job
		SET    body        = $2,
		       retries     = $3,
		       attempts    = $4,
		       status      = $5,
		       next_run_at = $6,
		       check_in    = $7,
		       updated_at  = $8
		WHERE id = $1`,
		job.ID,
		job.Body,
		job.Retries,
		job.Attempts,
		job.Status,
		job.NextRunAt,
		job.CheckIn,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

func (r *JobRepository) FindStaleRunning(ctx context.Context, cutoff time.Time) (*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM job
		WHERE  status = 'Running'
		  AND  (check_in <= $1 OR (check_in IS NULL AND updated_at <= $1))
		ORDER BY updated_at ASC
		LIMIT 1`

	job, err := scanJob(r.pool.QueryRow(ctx, query, cutoff))
	if errors.Is(err, domain.ErrJobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find stale running job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) CountEligible(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM job
		WHERE  status = 'Pending'
		  AND  (next_run_at IS NULL OR next_run_at < $1)`, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count eligible jobs: %w", err)
	}
	return count, nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.ID, &j.UniqueID, &j.URL, &j.Method, &j.Headers, &j.Body,
		&j.Retries, &j.Attempts, &j.Status, &j.NextRunAt, &j.Cron,
		&j.CheckIn, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &j, nil
}
