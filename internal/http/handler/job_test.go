package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hookq/hookq/internal/domain"
	"github.com/hookq/hookq/internal/http/handler"
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

func newTestRouter(repo *fakeJobRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewJobHandler(usecase.NewJobUsecase(repo), slog.Default())

	r := gin.New()
	r.POST("/jobs", h.Submit)
	r.GET("/jobs/:id", h.GetByID)
	return r
}

const testID = "4f8c9a2e-1b3d-4c5e-8f7a-9b0c1d2e3f40"

// ---- tests ----

func TestSubmit_ReturnsIDLine(t *testing.T) {
	repo := &fakeJobRepo{
		create: func(_ context.Context, job *domain.Job) (*domain.Job, error) {
			out := *job
			out.ID = testID
			return &out, nil
		},
	}
	router := newTestRouter(repo)

	body := `{"url":"http://h/ok","method":"GET","run_at":"2026-09-01T00:00:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testID+"\n", w.Body.String())
}

func TestSubmit_DuplicateReturnsExistingID(t *testing.T) {
	repo := &fakeJobRepo{
		create: func(context.Context, *domain.Job) (*domain.Job, error) {
			return nil, domain.ErrDuplicateFingerprint
		},
		getByFingerprint: func(_ context.Context, fp string) (*domain.Job, error) {
			return &domain.Job{ID: testID, UniqueID: fp}, nil
		},
	}
	router := newTestRouter(repo)

	body := `{"url":"http://h/ok","method":"GET","run_at":"2026-09-01T00:00:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testID+"\n", w.Body.String())
}

func TestSubmit_MalformedBody(t *testing.T) {
	router := newTestRouter(&fakeJobRepo{})

	for _, body := range []string{"{not json", `{"url":"http://h/ok"}`, `{"method":"GET"}`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}

func TestSubmit_RepoError(t *testing.T) {
	repo := &fakeJobRepo{
		create: func(context.Context, *domain.Job) (*domain.Job, error) {
			return nil, assert.AnError
		},
	}
	router := newTestRouter(repo)

	body := `{"url":"http://h/ok","method":"GET"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetByID_ReturnsFullJob(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	cron := "0 */5 * * * *"
	repo := &fakeJobRepo{
		getByID: func(_ context.Context, id string) (*domain.Job, error) {
			return &domain.Job{
				ID:        id,
				UniqueID:  strings.Repeat("ab", 32),
				URL:       "http://h/ok",
				Method:    "GET",
				Headers:   map[string]any{"a": "b"},
				Body:      json.RawMessage(`{"x":1}`),
				Retries:   0,
				Attempts:  1,
				Status:    domain.StatusSuccess,
				NextRunAt: now,
				Cron:      &cron,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		},
	}
	router := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs/"+testID, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, testID, got["id"])
	assert.Equal(t, "Success", got["status"])
	assert.Equal(t, float64(1), got["attempts"])
	assert.Equal(t, map[string]any{"x": float64(1)}, got["body"])
	assert.Equal(t, cron, got["cron"])
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &fakeJobRepo{
		getByID: func(context.Context, string) (*domain.Job, error) {
			return nil, domain.ErrJobNotFound
		},
	}
	router := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs/"+testID, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetByID_RejectsNonUUID(t *testing.T) {
	router := newTestRouter(&fakeJobRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
