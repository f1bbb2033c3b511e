package service

import (
	"fmt"
	"strings"

	"github.com/tieubaoca/contract-analysis-be/types"
)

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	ChunkSize:    1000,
	ChunkOverlap: 200,
}

// ChunkerService splits document text into fixed-size overlapping windows.
// It is a pure function of its input and configuration: re-ingesting the
// same text always produces the same chunks.
type ChunkerService struct {
	chunkSize    int
	chunkOverlap int
}

func NewChunkerService(config types.DocumentServiceConfig) (*ChunkerService, error) {
	if config.ChunkSize <= 0 {
		return nil, types.NewConfigError(fmt.Sprintf("chunk size must be positive, got %d", config.ChunkSize))
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return nil, types.NewConfigError(fmt.Sprintf("chunk overlap must be in [0, chunk size), got %d", config.ChunkOverlap))
	}
	return &ChunkerService{
		chunkSize:    config.ChunkSize,
		chunkOverlap: config.ChunkOverlap,
	}, nil
}

// JoinPages concatenates page texts into the document's full text and
// records where each page starts, so chunks can be attributed to pages.
func JoinPages(pages []types.Page) (string, []types.PageBoundary) {
	var sb strings.Builder
	boundaries := make([]types.PageBoundary, 0, len(pages))
	for i, page := range pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		boundaries = append(boundaries, types.PageBoundary{
			Number: page.Number,
			Offset: sb.Len(),
		})
		sb.WriteString(page.Text)
	}
	return sb.String(), boundaries
}

// Chunk splits text into windows of at most chunkSize characters, advancing
// by chunkSize-chunkOverlap per step. The final chunk may be shorter; text
// shorter than one window yields a single chunk. Each chunk is attributed to
// the page containing its start offset, even when it runs past a page
// boundary.
func (s *ChunkerService) Chunk(documentID, text string, boundaries []types.PageBoundary) []types.DocumentChunk {
	if text == "" {
		return nil
	}
	step := s.chunkSize - s.chunkOverlap
	var chunks []types.DocumentChunk
	for start := 0; start < len(text); start += step {
		end := start + s.chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, types.DocumentChunk{
			DocumentID: documentID,
			Index:      len(chunks),
			Content:    text[start:end],
			Page:       pageAt(boundaries, start),
			Start:      start,
		})
	}
	return chunks
}

// pageAt returns the number of the page whose interval contains offset.
func pageAt(boundaries []types.PageBoundary, offset int) int {
	page := 1
	for _, b := range boundaries {
		if b.Offset > offset {
			break
		}
		page = b.Number
	}
	return page
}
