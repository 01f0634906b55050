package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hookq/hookq/internal/domain"
	"github.com/hookq/hookq/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeJobRepo struct {
	create           func(ctx context.Context, job *domain.Job) (*domain.Job, error)
	getByID          func(ctx context.Context, id string) (*domain.Job, error)
	getByFingerprint func(ctx context.Context, fp string) (*domain.Job, error)
}

func (r *fakeJobRepo) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	return r.create(ctx, job)
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	return r.getByID(ctx, id)
}

func (r *fakeJobRepo) GetByFingerprint(ctx context.Context, fp string) (*domain.Job, error) {
	return r.getByFingerprint(ctx, fp)
}

func (r *fakeJobRepo) ClaimNext(context.Context, time.Time) (*domain.Job, error) {
	panic("not used")
}

func (r *fakeJobRepo) Update(context.Context, *domain.Job) error { panic("not used") }

func (r *fakeJobRepo) FindStaleRunning(context.Context, time.Time) (*domain.Job, error) {
	panic("not used")
}

func (r *fakeJobRepo) CountEligible(context.Context, time.Time) (int64, error) {
	panic("not used")
}

// ---- tests ----

func TestSubmit_CreatesPendingJob(t *testing.T) {
	var captured *domain.Job
	repo := &fakeJobRepo{
		create: func(_ context.Context, job *domain.Job) (*domain.Job, error) {
			captured = job
			out := *job
			out.ID = "11111111-1111-4111-8111-111111111111"
			return &out, nil
		},
	}

	runAt := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	id, err := usecase.NewJobUsecase(repo).Submit(context.Background(), usecase.SubmitJobInput{
		URL:    "http://h/ok",
		Method: "GET",
		Body:   json.RawMessage(`{"x":1}`),
		RunAt:  &runAt,
	})
	require.NoError(t, err)
	assert.Equal(t, "11111111-1111-4111-8111-111111111111", id)

	require.NotNil(t, captured)
	assert.Equal(t, domain.StatusPending, captured.Status)
	assert.Equal(t, runAt, captured.NextRunAt)
	assert.Zero(t, captured.Attempts)
	assert.Zero(t, captured.Retries)
	assert.Len(t, captured.UniqueID, 64)
	assert.NotNil(t, captured.Headers)
}

func TestSubmit_DefaultsRunAtToNow(t *testing.T) {
	var captured *domain.Job
	repo := &fakeJobRepo{
		create: func(_ context.Context, job *domain.Job) (*domain.Job, error) {
			captured = job
			return job, nil
		},
	}

	before := time.Now().UTC()
	_, err := usecase.NewJobUsecase(repo).Submit(context.Background(), usecase.SubmitJobInput{
		URL:    "http://h/ok",
		Method: "GET",
	})
	after := time.Now().UTC()

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.False(t, captured.NextRunAt.Before(before))
	assert.False(t, captured.NextRunAt.After(after))
}

func TestSubmit_DuplicateReturnsExistingID(t *testing.T) {
	var lookedUp string
	repo := &fakeJobRepo{
		create: func(context.Context, *domain.Job) (*domain.Job, error) {
			return nil, domain.ErrDuplicateFingerprint
		},
		getByFingerprint: func(_ context.Context, fp string) (*domain.Job, error) {
			lookedUp = fp
			return &domain.Job{ID: "existing-id", UniqueID: fp}, nil
		},
	}

	id, err := usecase.NewJobUsecase(repo).Submit(context.Background(), usecase.SubmitJobInput{
		URL:    "http://h/ok",
		Method: "GET",
	})
	require.NoError(t, err)
	assert.Equal(t, "existing-id", id)
	assert.Len(t, lookedUp, 64)
}

func TestSubmit_DuplicateButRowMissing(t *testing.T) {
	repo := &fakeJobRepo{
		create: func(context.Context, *domain.Job) (*domain.Job, error) {
			return nil, domain.ErrDuplicateFingerprint
		},
		getByFingerprint: func(context.Context, string) (*domain.Job, error) {
			return nil, domain.ErrJobNotFound
		},
	}

	_, err := usecase.NewJobUsecase(repo).Submit(context.Background(), usecase.SubmitJobInput{
		URL:    "http://h/ok",
		Method: "GET",
	})
	assert.Error(t, err)
}

func TestSubmit_RepoErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	repo := &fakeJobRepo{
		create: func(context.Context, *domain.Job) (*domain.Job, error) {
			return nil, boom
		},
	}

	_, err := usecase.NewJobUsecase(repo).Submit(context.Background(), usecase.SubmitJobInput{
		URL:    "http://h/ok",
		Method: "GET",
	})
	assert.ErrorIs(t, err, boom)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &fakeJobRepo{
		getByID: func(context.Context, string) (*domain.Job, error) {
			return nil, domain.ErrJobNotFound
		},
	}

	_, err := usecase.NewJobUsecase(repo).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}
