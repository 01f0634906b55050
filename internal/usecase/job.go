package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hookq/hookq/internal/domain"
	"github.com/hookq/hookq/internal/fingerprint"
	"github.com/hookq/hookq/internal/repository"
)

type JobUsecase struct {
	repo repository.JobRepository
}

func NewJobUsecase(repo repository.JobRepository) *JobUsecase {
	return &JobUsecase{repo: repo}
}

type SubmitJobInput struct {
	URL     string
	Method  string
	Headers map[string]any
	Body    json.RawMessage
	RunAt   *time.Time
	Cron    *string
}

// Submit admits a job and returns its id. Admission is idempotent: a
// resubmission with the same method, URL, headers, body and run time
// maps onto the existing row's id instead of creating a duplicate.
func (u *JobUsecase) Submit(ctx context.Context, input SubmitJobInput) (string, error) {
	now := time.Now().UTC()

	runAt := now
	if input.RunAt != nil {
		runAt = input.RunAt.UTC()
	}

	fp := fingerprint.New(input.Method, input.URL, input.Headers, input.Body, &runAt)

	headers := input.Headers
	if headers == nil {
		headers = make(map[string]any)
	}
	body := input.Body
	if len(body) == 0 {
		body = json.RawMessage("null")
	}

	job := &domain.Job{
		UniqueID:  fp,
		URL:       input.URL,
		Method:    input.Method,
		Headers:   headers,
		Body:      body,
		Status:    domain.StatusPending,
		NextRunAt: runAt,
		Cron:      input.Cron,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := u.repo.Create(ctx, job)
	if err == nil {
		return created.ID, nil
	}
	if !errors.Is(err, domain.ErrDuplicateFingerprint) {
		return "", fmt.Errorf("create job: %w", err)
	}

	// unique_id conflict: someone already submitted this exact request.
	existing, err := u.repo.GetByFingerprint(ctx, fp)
	if err != nil {
		return "", fmt.Errorf("find job by fingerprint: %w", err)
	}
	return existing.ID, nil
}

func (u *JobUsecase) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := u.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}
