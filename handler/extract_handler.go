package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/contract-analysis-be/service"
	"github.com/tieubaoca/contract-analysis-be/types"
)

type ExtractHandler struct {
	extractService *service.ExtractService
	metrics        *service.MetricsService
}

func NewExtractHandler(extractService *service.ExtractService, metrics *service.MetricsService) *ExtractHandler {
	return &ExtractHandler{
		extractService: extractService,
		metrics:        metrics,
	}
}

// ExtractHandler pulls the structured fields (parties, dates, amounts,
// clauses) out of an ingested contract.
func (h *ExtractHandler) ExtractHandler(c *gin.Context) {
	var req types.ExtractRequest
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

	fields, err := h.extractService.ExtractFields(c.Request.Context(), req.DocumentID)
	if err != nil {
		sendError(c, err)
		return
	}
	h.metrics.IncExtractions()

	sendSuccess(c, types.ExtractResponse{
		DocumentID: req.DocumentID,
		Fields:     *fields,
	})
}
