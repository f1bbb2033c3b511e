package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/contract-analysis-be/repository"
	"github.com/tieubaoca/contract-analysis-be/service"
	"github.com/tieubaoca/contract-analysis-be/types"
)

type AskHandler struct {
	ragService *service.RAGService
	repo       repository.DocumentRepo
	metrics    *service.MetricsService
	defaultK   int
	maxK       int
}

func NewAskHandler(ragService *service.RAGService, repo repository.DocumentRepo, metrics *service.MetricsService, defaultK, maxK int) *AskHandler {
	return &AskHandler{
		ragService: ragService,
		repo:       repo,
		metrics:    metrics,
		defaultK:   defaultK,
		maxK:       maxK,
	}
}

// AskHandler answers a question about ingested contracts in one response,
// with citations for the retrieved context.
func (h *AskHandler) AskHandler(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}
	if req.Question == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Question is required",
		})
		return
	}
	if req.K == 0 {
		req.K = h.defaultK
	}
	// An out-of-range k is the client's mistake, not a retrieval failure.
	if req.K < 1 || req.K > h.maxK {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: fmt.Sprintf("k must be in 1..%d", h.maxK),
		})
		return
	}

	// Unknown document ids are a client error, not an empty retrieval.
	for _, id := range req.DocumentIDs {
		if _, err := h.repo.GetDocument(c.Request.Context(), id); err != nil {
			sendError(c, err)
			return
		}
	}

	response, err := h.ragService.Ask(c.Request.Context(), req.Question, req.K, req.DocumentIDs)
	if err != nil {
		sendError(c, err)
		return
	}
	h.metrics.IncQuestions()

	sendSuccess(c, response)
}
