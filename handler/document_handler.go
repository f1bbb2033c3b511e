package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/contract-analysis-be/repository"
	"github.com/tieubaoca/contract-analysis-be/service"
	"github.com/tieubaoca/contract-analysis-be/types"
)

type DocumentHandler struct {
	repo          repository.DocumentRepo
	ingestService *service.IngestService
}

func NewDocumentHandler(repo repository.DocumentRepo, ingestService *service.IngestService) *DocumentHandler {
	return &DocumentHandler{
		repo:          repo,
		ingestService: ingestService,
	}
}

// ListDocumentsHandler returns the registry of ingested contracts.
func (h *DocumentHandler) ListDocumentsHandler(c *gin.Context) {
	records, err := h.repo.ListDocuments(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}

	documents := make([]types.DocumentInfo, 0, len(records))
	for _, record := range records {
		documents = append(documents, types.DocumentInfo{
			DocumentID: record.ID,
			Filename:   record.Filename,
			UploadDate: record.UploadDate,
			NumPages:   record.NumPages,
			NumChunks:  record.NumChunks,
		})
	}

	sendSuccess(c, types.ListDocumentsResponse{
		Documents: documents,
		Total:     len(documents),
	})
}

// GetDocumentHandler returns the metadata record of one contract, including
// any extraction and audit results stored on it.
func (h *DocumentHandler) GetDocumentHandler(c *gin.Context) {
	id := c.Param("id")
	record, err := h.repo.GetDocument(c.Request.Context(), id)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, record)
}

// ServeDocumentFileHandler streams the stored PDF back to the client.
func (h *DocumentHandler) ServeDocumentFileHandler(c *gin.Context) {
	id := c.Param("id")
	record, err := h.repo.GetDocument(c.Request.Context(), id)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=\""+record.Filename+"\"")
	c.Header("Content-Type", "application/pdf")
	c.File(record.FilePath)
}

// DeleteDocumentHandler removes a contract from the index and the registry.
// Re-ingesting the same file afterwards gets a fresh document id.
func (h *DocumentHandler) DeleteDocumentHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.ingestService.DeleteDocument(c.Request.Context(), id); err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "Document deleted",
	})
}
