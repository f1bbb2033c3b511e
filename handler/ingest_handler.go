package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/contract-analysis-be/service"
	"github.com/tieubaoca/contract-analysis-be/types"
)

type IngestHandler struct {
	ingestService *service.IngestService
	metrics       *service.MetricsService
}

func NewIngestHandler(ingestService *service.IngestService, metrics *service.MetricsService) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		metrics:       metrics,
	}
}

// IngestHandler accepts one or more PDF uploads under the "files" form field
// and indexes each one. Metadata is an optional JSON blob in the "metadata"
// field.
func (h *IngestHandler) IngestHandler(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid multipart form",
		})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "No files uploaded",
		})
		return
	}

	var req types.IngestRequest
	if metadata := c.Request.FormValue("metadata"); metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &req); err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  false,
				Message: "Invalid metadata",
			})
			return
		}
	}

	const maxSize = 10 << 20
	for _, file := range files {
		if file.Size > maxSize {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  false,
				Message: fmt.Sprintf("File %s too large", file.Filename),
			})
			return
		}
	}

	documentIDs := make([]string, 0, len(files))
	totalChunks := 0
	for _, file := range files {
		record, err := h.ingestService.IngestUpload(c.Request.Context(), req, file, nil)
		if err != nil {
			sendError(c, err)
			return
		}
		documentIDs = append(documentIDs, record.ID)
		totalChunks += record.NumChunks
	}
	h.metrics.IncIngestions(int64(len(documentIDs)))

	sendSuccess(c, types.IngestResponse{
		DocumentIDs: documentIDs,
		Message:     fmt.Sprintf("Ingested %d document(s)", len(documentIDs)),
		TotalChunks: totalChunks,
	})
}

// IngestStreamHandler indexes a single upload while streaming progress
// updates back as server-sent events.
func (h *IngestHandler) IngestStreamHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid file",
		})
		return
	}
	const maxSize = 10 << 20
	if file.Size > maxSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "File too large",
		})
		return
	}

	var req types.IngestRequest
	if metadata := c.Request.FormValue("metadata"); metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &req); err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  false,
				Message: "Invalid metadata",
			})
			return
		}
	}

	type ingestResult struct {
		record *types.DocumentRecord
		err    error
	}
	// The ingest goroutine owns statusChan; nobody closes it. Cancelling the
	// derived context is how this handler tells the goroutine to stop sending.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	statusChan := make(chan types.ProcessingDocumentStatus)
	resultChan := make(chan ingestResult, 1)
	go func() {
		record, err := h.ingestService.IngestUpload(ctx, req, file, statusChan)
		resultChan <- ingestResult{record: record, err: err}
	}()

	clientGone := c.Writer.CloseNotify()
	for {
		select {
		case <-clientGone:
			// Client disconnected: stop the ingest and wait for the goroutine
			// so it never sends into a handler that has returned.
			cancel()
			<-resultChan
			return
		case status := <-statusChan:
			jsonStatus, err := json.Marshal(status)
			if err != nil {
				continue
			}
			c.SSEvent("message", string(jsonStatus))
			c.Writer.Flush()
		case result := <-resultChan:
			if result.err != nil {
				c.JSON(statusForError(result.err), types.DataResponse{
					Status:  false,
					Message: result.err.Error(),
				})
				return
			}
			h.metrics.IncIngestions(1)
			c.JSON(http.StatusOK, types.DataResponse{
				Status: true,
				Data: types.IngestResponse{
					DocumentIDs: []string{result.record.ID},
					Message:     "Ingested 1 document(s)",
					TotalChunks: result.record.NumChunks,
				},
			})
			return
		}
	}
}
