package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/contract-analysis-be/repository"
	"github.com/tieubaoca/contract-analysis-be/service"
	"github.com/tieubaoca/contract-analysis-be/types"
)

type HealthHandler struct {
	repo    repository.DocumentRepo
	metrics *service.MetricsService
}

func NewHealthHandler(repo repository.DocumentRepo, metrics *service.MetricsService) *HealthHandler {
	return &HealthHandler{
		repo:    repo,
		metrics: metrics,
	}
}

func (h *HealthHandler) HealthHandler(c *gin.Context) {
	c.JSON(200, types.HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().Format(time.RFC3339),
		UptimeSeconds: h.metrics.UptimeSeconds(),
	})
}

func (h *HealthHandler) MetricsHandler(c *gin.Context) {
	totalDocuments, err := h.repo.CountDocuments(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, h.metrics.Snapshot(totalDocuments))
}
