package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/contract-analysis-be/types"
)

// statusForError maps the pipeline error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch types.KindOf(err) {
	case types.ErrKindNotFound:
		return http.StatusNotFound
	case types.ErrKindConflict:
		return http.StatusConflict
	case types.ErrKindConfig:
		return http.StatusBadRequest
	case types.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case types.ErrKindCancelled:
		// 499 is the de-facto "client closed request" status.
		return 499
	case types.ErrKindEmbeddingProvider, types.ErrKindGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func sendError(c *gin.Context, err error) {
	c.JSON(statusForError(err), types.DataResponse{
		Status:  false,
		Message: err.Error(),
	})
}

func sendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   data,
	})
}
