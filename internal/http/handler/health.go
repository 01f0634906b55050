package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hookq/hookq/internal/health"
)

type HealthHandler struct {
	checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) Live(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.checker.Liveness(ctx.Request.Context()))
}

func (h *HealthHandler) Ready(ctx *gin.Context) {
	result := h.checker.Readiness(ctx.Request.Context())
	code := http.StatusOK
	if result.Status != "up" {
		code = http.StatusServiceUnavailable
	}
	ctx.JSON(code, result)
}
