package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hookq/hookq/internal/domain"
	"github.com/hookq/hookq/internal/usecase"
)

type JobHandler struct {
	jobUsecase *usecase.JobUsecase
	logger     *slog.Logger
}

func NewJobHandler(jobUsecase *usecase.JobUsecase, logger *slog.Logger) *JobHandler {
	return &JobHandler{jobUsecase: jobUsecase, logger: logger.With("component", "job_handler")}
}

type submitJobRequest struct {
	URL     string          `json:"url"    binding:"required"`
	Method  string          `json:"method" binding:"required"`
	Headers map[string]any  `json:"headers"`
	Body    json.RawMessage `json:"body"`
	RunAt   *time.Time      `json:"run_at"`
	Cron    *string         `json:"cron"`
}

type jobResponse struct {
	ID        string          `json:"id"`
	UniqueID  string          `json:"unique_id"`
	URL       string          `json:"url"`
	Method    string          `json:"method"`
	Headers   map[string]any  `json:"headers"`
	Body      json.RawMessage `json:"body"`
	Retries   int             `json:"retries"`
	Attempts  int             `json:"attempts"`
	Status    domain.Status   `json:"status"`
	NextRunAt time.Time       `json:"next_run_at"`
	Cron      *string         `json:"cron"`
	CheckIn   *time.Time      `json:"check_in"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Submit admits a job and responds with its id as a plain-text line.
// Resubmitting an identical request returns the id of the existing job.
func (h *JobHandler) Submit(ctx *gin.Context) {
	var req submitJobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.jobUsecase.Submit(ctx.Request.Context(), usecase.SubmitJobInput{
		URL:     req.URL,
		Method:  req.Method,
		Headers: req.Headers,
		Body:    req.Body,
		RunAt:   req.RunAt,
		Cron:    req.Cron,
	})
	if err != nil {
		h.logger.Error("submit job", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.String(http.StatusOK, "%s\n", id)
}

func (h *JobHandler) GetByID(ctx *gin.Context) {
	jobID := ctx.Param("id")
	if _, err := uuid.Parse(jobID); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidJobID})
		return
	}

	job, err := h.jobUsecase.GetByID(ctx.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errJobNotFound})
			return
		}
		h.logger.Error("get job by id", "job_id", jobID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, jobResponse{
		ID:        job.ID,
		UniqueID:  job.UniqueID,
		URL:       job.URL,
		Method:    job.Method,
		Headers:   job.Headers,
		Body:      job.Body,
		Retries:   job.Retries,
		Attempts:  job.Attempts,
		Status:    job.Status,
		NextRunAt: job.NextRunAt,
		Cron:      job.Cron,
		CheckIn:   job.CheckIn,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	})
}
