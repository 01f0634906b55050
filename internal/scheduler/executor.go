package scheduler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hookq/hookq/internal/domain"
)

// Result is what the engine sees of the outbound call: a status code
// and the response text. Transport errors surface as a 500 with an
// empty body; the engine never distinguishes them from a server 500.
type Result struct {
	StatusCode int
	Body       string
}

// Caller maps a job's request spec to a Result. The worker treats it as
// an injectable capability so tests can swap out the network.
type Caller interface {
	Call(ctx context.Context, job *domain.Job) Result
}

// Executor performs the real HTTP call with a hard request timeout.
type Executor struct {
	client *http.Client
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger.With("component", "executor"),
	}
}

func (e *Executor) Call(ctx context.Context, job *domain.Job) Result {
	var bodyReader io.Reader
	hasBody := len(job.Body) > 0 && string(job.Body) != "null"
	if hasBody {
		bodyReader = bytes.NewReader(job.Body)
	}

	req, err := http.NewRequestWithContext(ctx, job.Method, job.URL, bodyReader)
	if err != nil {
		e.logger.Error("build request", "job_id", job.ID, "error", err)
		return Result{StatusCode: http.StatusInternalServerError}
	}

	// Only string-valued header entries are valid HTTP header values;
	// everything else is dropped.
	for k, v := range job.Headers {
		if s, ok := v.(string); ok {
			req.Header.Set(k, s)
		}
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("do request", "job_id", job.ID, "error", err)
		return Result{StatusCode: http.StatusInternalServerError}
	}
	defer func() { _ = resp.Body.Close() }()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{StatusCode: resp.StatusCode}
	}
	return Result{StatusCode: resp.StatusCode, Body: string(text)}
}
