package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/service"
)

func newTestRAGService(t *testing.T) *service.RAGService {
	t.Helper()
	retriever := service.NewRetrieverService(unitEmbedder{}, database.NewMemoryIndex(), 10)
	return service.NewRAGService(retriever, nil, 6000, time.Minute)
}

func TestAskHandler_RejectsOutOfRangeK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAskHandler(newTestRAGService(t), newMemoryRepo(), service.NewMetricsService(), 3, 10)

	router := gin.New()
	router.POST("/ask", h.AskHandler)

	for _, body := range []string{
		`{"question":"terms?","k":11}`,
		`{"question":"terms?","k":-1}`,
	} {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code, "body %s", body)
		assert.Contains(t, recorder.Body.String(), "k must be in 1..10")
	}
}

func TestStreamAskHandler_RejectsOutOfRangeK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStreamHandler(newTestRAGService(t), newMemoryRepo(), service.NewMetricsService(), 3, 10)

	router := gin.New()
	router.GET("/ask/stream", h.StreamAskHandler)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ask/stream?question=terms&k=99", nil)
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "k must be in 1..10")
	// No SSE stream was opened for the bad request.
	assert.NotEqual(t, "text/event-stream", recorder.Header().Get("Content-Type"))
}
