package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/types"
)

func newTestRAG(t *testing.T, backend GenerationBackend, contextBudget int) *RAGService {
	t.Helper()
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"about payments": {1, 0},
	}}
	retriever := NewRetrieverService(embedder, seededIndex(t), 10)
	return NewRAGService(retriever, backend, contextBudget, time.Minute)
}

func collectStream(t *testing.T, rag *RAGService, ctx context.Context, question string, k int) ([]types.StreamEvent, error) {
	t.Helper()
	events := make(chan types.StreamEvent)
	errChan := make(chan error, 1)
	go func() {
		errChan <- rag.StreamAnswer(ctx, question, k, nil, events)
	}()

	var collected []types.StreamEvent
	for {
		select {
		case event := <-events:
			collected = append(collected, event)
		case err := <-errChan:
			return collected, err
		}
	}
}

func TestAsk_ReturnsAnswerWithCitations(t *testing.T) {
	backend := &fakeBackend{answer: "The payment is due in 30 days."}
	rag := newTestRAG(t, backend, 6000)

	response, err := rag.Ask(context.Background(), "about payments", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, "The payment is due in 30 days.", response.Answer)
	require.Len(t, response.Citations, 2)
	assert.Equal(t, "payment terms", response.Citations[0].Content)
	assert.Equal(t, "doc-1", response.Citations[0].DocumentID)
}

func TestAsk_NoHitsReturnsFallbackAnswer(t *testing.T) {
	backend := &fakeBackend{answer: "should not be called"}
	embedder := &fakeEmbedder{}
	retriever := NewRetrieverService(embedder, database.NewMemoryIndex(), 10)
	rag := NewRAGService(retriever, backend, 6000, time.Minute)

	response, err := rag.Ask(context.Background(), "anything", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "No relevant information found in the specified documents.", response.Answer)
	assert.Empty(t, response.Citations)
	assert.Zero(t, backend.callCount())
}

func TestAsk_RetrievalFailureSkipsGeneration(t *testing.T) {
	backend := &fakeBackend{answer: "should not be called"}
	retriever := NewRetrieverService(&fakeEmbedder{}, &failingIndex{}, 10)
	rag := NewRAGService(retriever, backend, 6000, time.Minute)

	_, err := rag.Ask(context.Background(), "question", 3, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrKindRetrieval, types.KindOf(err))
	assert.Zero(t, backend.callCount())
}

func TestStreamAnswer_EventOrdering(t *testing.T) {
	backend := &fakeBackend{answer: "Net 30 payment terms apply."}
	rag := newTestRAG(t, backend, 6000)

	events, err := collectStream(t, rag, context.Background(), "about payments", 2)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	// Citations come first and exactly once, then only tokens.
	assert.Equal(t, types.TypeStreamCitations, events[0].Type)
	require.Len(t, events[0].Citations, 2)
	var answer strings.Builder
	for _, event := range events[1:] {
		require.Equal(t, types.TypeStreamToken, event.Type)
		answer.WriteString(event.Content)
	}
	assert.Equal(t, "Net 30 payment terms apply.", answer.String())
}

func TestStreamAnswer_MatchesBatchAnswer(t *testing.T) {
	backend := &fakeBackend{answer: "Identical answer either way."}
	rag := newTestRAG(t, backend, 6000)

	batch, err := rag.Ask(context.Background(), "about payments", 2, nil)
	require.NoError(t, err)

	events, err := collectStream(t, rag, context.Background(), "about payments", 2)
	require.NoError(t, err)

	var streamed strings.Builder
	for _, event := range events {
		if event.Type == types.TypeStreamToken {
			streamed.WriteString(event.Content)
		}
	}
	assert.Equal(t, batch.Answer, streamed.String())
}

func TestStreamAnswer_NoHitsReturnsNotFound(t *testing.T) {
	backend := &fakeBackend{answer: "should not be called"}
	retriever := NewRetrieverService(&fakeEmbedder{}, database.NewMemoryIndex(), 10)
	rag := NewRAGService(retriever, backend, 6000, time.Minute)

	events, err := collectStream(t, rag, context.Background(), "anything", 3)
	require.Error(t, err)
	assert.Equal(t, types.ErrKindNotFound, types.KindOf(err))
	assert.Empty(t, events)
	assert.Zero(t, backend.callCount())
}

func TestStreamAnswer_CancelStopsStream(t *testing.T) {
	fragments := make([]string, 100)
	for i := range fragments {
		fragments[i] = "token "
	}
	backend := &fakeBackend{fragments: fragments}
	rag := newTestRAG(t, backend, 6000)

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan types.StreamEvent)
	errChan := make(chan error, 1)
	go func() {
		errChan <- rag.StreamAnswer(ctx, "about payments", 2, nil, events)
	}()

	// Read the citations event and one token, then walk away.
	first := <-events
	assert.Equal(t, types.TypeStreamCitations, first.Type)
	<-events
	cancel()

	err := <-errChan
	require.Error(t, err)
	assert.Equal(t, types.ErrKindCancelled, types.KindOf(err))
}

func TestStreamAnswer_GenerationErrorReturned(t *testing.T) {
	backend := &fakeBackend{err: types.NewGenerationError("model unavailable", true, nil)}
	rag := newTestRAG(t, backend, 6000)

	events, err := collectStream(t, rag, context.Background(), "about payments", 2)
	require.Error(t, err)
	assert.Equal(t, types.ErrKindGeneration, types.KindOf(err))

	// The citations event was already delivered and is not retracted.
	require.Len(t, events, 1)
	assert.Equal(t, types.TypeStreamCitations, events[0].Type)
}

func TestAsk_ContextBudgetDropsLowestRanked(t *testing.T) {
	backend := &fakeBackend{answer: "ok"}
	// Large enough for the first chunk's tagged text but not the second.
	rag := newTestRAG(t, backend, 60)

	_, err := rag.Ask(context.Background(), "about payments", 2, nil)
	require.NoError(t, err)

	user := backend.lastUserMessage()
	assert.Contains(t, user, "payment terms")
	assert.NotContains(t, user, "termination clause")
	assert.Contains(t, user, "Question: about payments")
}
