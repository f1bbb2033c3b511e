package database

import (
	"context"

	"github.com/tieubaoca/contract-analysis-be/types"
)

// SearchHit is a single nearest-neighbor match. Score is the raw cosine
// similarity reported by the index backend; the retriever normalizes it
// before it reaches callers.
type SearchHit struct {
	Chunk types.DocumentChunk
	Score float32
}

// VectorIndex stores one embedding per chunk, keyed by the owning document.
//
// Upsert makes a document's chunk set visible atomically: a concurrent Search
// either sees all of the document's chunks or none of them. Re-upserting an
// existing document id is rejected with a conflict error; callers must Delete
// first. Search returns at most k hits ordered by score descending, ties
// broken by insertion order, and returns fewer than k when the filtered set
// is smaller. Delete is a no-op for unknown ids.
type VectorIndex interface {
	Upsert(ctx context.Context, documentID string, chunks []types.DocumentChunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, k int, documentIDs []string) ([]SearchHit, error)
	Delete(ctx context.Context, documentID string) error
}
