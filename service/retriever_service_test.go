package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/types"
)

func seededIndex(t *testing.T) *database.MemoryIndex {
	t.Helper()
	index := database.NewMemoryIndex()
	chunks := []types.DocumentChunk{
		{DocumentID: "doc-1", Index: 0, Content: "payment terms", Page: 1},
		{DocumentID: "doc-1", Index: 1, Content: "termination clause", Page: 2},
	}
	vectors := [][]float32{{1, 0}, {0, 1}}
	require.NoError(t, index.Upsert(context.Background(), "doc-1", chunks, vectors))
	return index
}

func TestRetrieve_ValidatesK(t *testing.T) {
	retriever := NewRetrieverService(&fakeEmbedder{}, seededIndex(t), 10)

	for _, k := range []int{0, -1, 11} {
		_, err := retriever.Retrieve(context.Background(), "question", k, nil)
		require.Error(t, err)
		assert.Equal(t, types.ErrKindRetrieval, types.KindOf(err))
	}
}

func TestRetrieve_EmbeddingErrorPassesThrough(t *testing.T) {
	providerErr := types.NewEmbeddingProviderError("rate limited", true, nil)
	retriever := NewRetrieverService(&fakeEmbedder{err: providerErr}, seededIndex(t), 10)

	_, err := retriever.Retrieve(context.Background(), "question", 3, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrKindEmbeddingProvider, types.KindOf(err))
	assert.True(t, types.IsRetryable(err))
}

func TestRetrieve_IndexErrorWrapped(t *testing.T) {
	retriever := NewRetrieverService(&fakeEmbedder{}, &failingIndex{}, 10)

	_, err := retriever.Retrieve(context.Background(), "question", 3, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrKindRetrieval, types.KindOf(err))
}

func TestRetrieve_NormalizesScores(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"about payments": {1, 0},
	}}
	retriever := NewRetrieverService(embedder, seededIndex(t), 10)

	hits, err := retriever.Retrieve(context.Background(), "about payments", 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// Identical direction maps to 1, orthogonal to 0.5.
	assert.Equal(t, "payment terms", hits[0].Chunk.Content)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.InDelta(t, 0.5, hits[1].Score, 1e-6)
	for _, hit := range hits {
		assert.GreaterOrEqual(t, hit.Score, float32(0))
		assert.LessOrEqual(t, hit.Score, float32(1))
	}
}

func TestRetrieve_RespectsDocumentFilter(t *testing.T) {
	index := seededIndex(t)
	chunks := []types.DocumentChunk{{DocumentID: "doc-2", Index: 0, Content: "other contract", Page: 1}}
	require.NoError(t, index.Upsert(context.Background(), "doc-2", chunks, [][]float32{{1, 0}}))

	retriever := NewRetrieverService(&fakeEmbedder{}, index, 10)
	hits, err := retriever.Retrieve(context.Background(), "question", 5, []string{"doc-2"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-2", hits[0].Chunk.DocumentID)
}
