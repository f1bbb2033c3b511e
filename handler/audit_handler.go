package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/contract-analysis-be/service"
	"github.com/tieubaoca/contract-analysis-be/types"
)

type AuditHandler struct {
	auditService *service.AuditService
	metrics      *service.MetricsService
}

func NewAuditHandler(auditService *service.AuditService, metrics *service.MetricsService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		metrics:      metrics,
	}
}

// AuditHandler scans an ingested contract for risky clauses and returns the
// validated findings.
func (h *AuditHandler) AuditHandler(c *gin.Context) {
	var req types.AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}
	if req.DocumentID == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Document id is required",
		})
		return
	}

	response, err := h.auditService.AuditContract(c.Request.Context(), req.DocumentID)
	if err != nil {
		sendError(c, err)
		return
	}
	h.metrics.IncAudits()

	sendSuccess(c, response)
}
