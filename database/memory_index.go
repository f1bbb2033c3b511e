package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tieubaoca/contract-analysis-be/types"
)

type memoryEntry struct {
	chunk  types.DocumentChunk
	vector []float32
	seq    int64
}

// MemoryIndex is a brute-force cosine similarity index kept entirely in
// memory. Writes take the full lock and append a document's entries in one
// step, so readers never observe a partially written chunk set. Reads for
// different documents proceed concurrently under the read lock.
type MemoryIndex struct {
	mu      sync.RWMutex
	docs    map[string][]memoryEntry
	nextSeq int64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		docs: make(map[string][]memoryEntry),
	}
}

func (m *MemoryIndex) Upsert(ctx context.Context, documentID string, chunks []types.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[documentID]; exists {
		return types.NewConflictError(fmt.Sprintf("document %s already indexed, delete it first", documentID))
	}
	entries := make([]memoryEntry, 0, len(chunks))
	for i, chunk := range chunks {
		entries = append(entries, memoryEntry{
			chunk:  chunk,
			vector: vectors[i],
			seq:    m.nextSeq,
		})
		m.nextSeq++
	}
	m.docs[documentID] = entries
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, vector []float32, k int, documentIDs []string) ([]SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("invalid k: %d", k)
	}
	var filter map[string]struct{}
	if len(documentIDs) > 0 {
		filter = make(map[string]struct{}, len(documentIDs))
		for _, id := range documentIDs {
			filter[id] = struct{}{}
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		hit SearchHit
		seq int64
	}
	var candidates []scored
	for docID, entries := range m.docs {
		if filter != nil {
			if _, ok := filter[docID]; !ok {
				continue
			}
		}
		for _, e := range entries {
			candidates = append(candidates, scored{
				hit: SearchHit{Chunk: e.chunk, Score: cosineSimilarity(vector, e.vector)},
				seq: e.seq,
			})
		}
	}

	// Score descending, earlier-inserted chunk wins ties.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].hit.Score != candidates[j].hit.Score {
			return candidates[i].hit.Score > candidates[j].hit.Score
		}
		return candidates[i].seq < candidates[j].seq
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	hits := make([]SearchHit, 0, k)
	for i := 0; i < k; i++ {
		hits = append(hits, candidates[i].hit)
	}
	return hits, nil
}

func (m *MemoryIndex) Delete(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, documentID)
	return nil
}

// cosineSimilarity returns a value between -1 and 1, where 1 means identical
// direction. Zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
