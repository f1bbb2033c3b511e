package service

import (
	"context"
	"fmt"

	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/types"
)

// RetrieverService turns a question into a ranked set of context chunks:
// embed the question, search the index with the caller's k and document
// filter, and normalize scores to [0,1] so callers can compare results
// across index backends.
type RetrieverService struct {
	embedder Embedder
	index    database.VectorIndex
	maxK     int
}

func NewRetrieverService(embedder Embedder, index database.VectorIndex, maxK int) *RetrieverService {
	if maxK <= 0 {
		maxK = 10
	}
	return &RetrieverService{
		embedder: embedder,
		index:    index,
		maxK:     maxK,
	}
}

func (s *RetrieverService) Retrieve(ctx context.Context, question string, k int, documentIDs []string) ([]database.SearchHit, error) {
	if k < 1 || k > s.maxK {
		return nil, types.NewRetrievalError(fmt.Sprintf("k must be in 1..%d, got %d", s.maxK, k), nil)
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		// Embedding provider errors pass through unchanged so the caller
		// can read the retryable flag.
		return nil, err
	}

	hits, err := s.index.Search(ctx, vectors[0], k, documentIDs)
	if err != nil {
		return nil, types.NewRetrievalError("vector index search failed", err)
	}

	for i := range hits {
		hits[i].Score = normalizeScore(hits[i].Score)
	}
	return hits, nil
}

// normalizeScore maps cosine similarity from [-1,1] onto [0,1].
func normalizeScore(score float32) float32 {
	normalized := (1 + score) / 2
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}
