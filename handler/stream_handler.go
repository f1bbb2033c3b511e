package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/contract-analysis-be/repository"
	"github.com/tieubaoca/contract-analysis-be/service"
	"github.com/tieubaoca/contract-analysis-be/types"
)

type StreamHandler struct {
	ragService *service.RAGService
	repo       repository.DocumentRepo
	metrics    *service.MetricsService
	defaultK   int
	maxK       int
}

func NewStreamHandler(ragService *service.RAGService, repo repository.DocumentRepo, metrics *service.MetricsService, defaultK, maxK int) *StreamHandler {
	return &StreamHandler{
		ragService: ragService,
		repo:       repo,
		metrics:    metrics,
		defaultK:   defaultK,
		maxK:       maxK,
	}
}

// StreamAskHandler answers a question as a server-sent event stream: one
// citations event, then token events, then exactly one done or error event.
// A client that disconnects mid-stream gets no terminal event.
func (h *StreamHandler) StreamAskHandler(c *gin.Context) {
	question := c.Query("question")
	if question == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Question is required",
		})
		return
	}

	k := h.defaultK
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  false,
				Message: "Invalid k",
			})
			return
		}
		k = parsed
	}
	// Reject an out-of-range k before the SSE stream opens.
	if k < 1 || k > h.maxK {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: fmt.Sprintf("k must be in 1..%d", h.maxK),
		})
		return
	}

	var documentIDs []string
	if raw := c.Query("document_ids"); raw != "" {
		documentIDs = strings.Split(raw, ",")
	}
	for _, id := range documentIDs {
		if _, err := h.repo.GetDocument(c.Request.Context(), id); err != nil {
			sendError(c, err)
			return
		}
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := make(chan types.StreamEvent)
	errChan := make(chan error, 1)
	go func() {
		errChan <- h.ragService.StreamAnswer(ctx, question, k, documentIDs, events)
	}()
	h.metrics.IncStreams()

	clientGone := c.Writer.CloseNotify()
	for {
		select {
		case <-clientGone:
			cancel()
			<-errChan
			return // Client disconnected, no terminal event
		case event := <-events:
			h.writeEvent(c, event)
		case err := <-errChan:
			if err == nil {
				h.writeEvent(c, types.StreamEvent{Type: types.TypeStreamDone})
				return
			}
			if types.KindOf(err) == types.ErrKindCancelled {
				return
			}
			h.writeEvent(c, types.StreamEvent{Type: types.TypeStreamError, Content: err.Error()})
			return
		}
	}
}

func (h *StreamHandler) writeEvent(c *gin.Context, event types.StreamEvent) {
	jsonEvent, err := json.Marshal(event)
	if err != nil {
		return
	}
	c.SSEvent("message", string(jsonEvent))
	c.Writer.Flush()
}
