package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/types"
)

const ragSystemPrompt = "You are a legal contract analysis assistant. " +
	"Use ONLY the provided context to answer questions. Be precise and cite " +
	"specific clauses when possible. If the context does not contain the " +
	"answer, say so instead of guessing."

const citationPreviewLen = 200

// requestState tracks where an answer request is in its lifecycle.
type requestState string

const (
	statePending    requestState = "pending"
	stateRetrieving requestState = "retrieving"
	stateGenerating requestState = "generating"
	stateComplete   requestState = "complete"
	stateFailed     requestState = "failed"
)

// RAGService orchestrates retrieval-augmented answers: retrieve context
// chunks, build the grounded prompt under the context budget, and run the
// generation backend in batch or streaming mode. Retrieval failures abort
// before any generation call is made.
type RAGService struct {
	retriever     *RetrieverService
	backend       GenerationBackend
	contextBudget int
	genTimeout    time.Duration
}

func NewRAGService(retriever *RetrieverService, backend GenerationBackend, contextBudget int, genTimeout time.Duration) *RAGService {
	return &RAGService{
		retriever:     retriever,
		backend:       backend,
		contextBudget: contextBudget,
		genTimeout:    genTimeout,
	}
}

// Ask answers the question in one blocking generation call, grounded in the
// top-k retrieved chunks.
func (s *RAGService) Ask(ctx context.Context, question string, k int, documentIDs []string) (*types.AskResponse, error) {
	state := stateRetrieving
	hits, err := s.retriever.Retrieve(ctx, question, k, documentIDs)
	if err != nil {
		log.Printf("ask %s -> %s: %v", state, stateFailed, err)
		return nil, err
	}
	if len(hits) == 0 {
		return &types.AskResponse{
			Question:  question,
			Answer:    "No relevant information found in the specified documents.",
			Citations: []types.Citation{},
		}, nil
	}

	state = stateGenerating
	genCtx := ctx
	if s.genTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.genTimeout)
		defer cancel()
	}

	answer, err := s.backend.Generate(genCtx, ragSystemPrompt, s.buildUserMessage(question, hits))
	if err != nil {
		log.Printf("ask %s -> %s: %v", state, stateFailed, err)
		return nil, err
	}

	return &types.AskResponse{
		Question:  question,
		Answer:    answer,
		Citations: CitationsFromHits(hits),
	}, nil
}

// StreamAnswer answers the question incrementally, delivering one citations
// event followed by token events on the events channel. The terminal event
// is the caller's responsibility: a nil return means the stream completed
// and deserves a done event, a non-nil return carries the failure. Events
// already delivered are never retracted. Cancelling ctx stops the stream
// between fragments without a terminal event.
func (s *RAGService) StreamAnswer(ctx context.Context, question string, k int, documentIDs []string, events chan<- types.StreamEvent) error {
	state := stateRetrieving
	hits, err := s.retriever.Retrieve(ctx, question, k, documentIDs)
	if err != nil {
		log.Printf("stream %s -> %s: %v", state, stateFailed, err)
		return err
	}
	if len(hits) == 0 {
		return types.NewNotFoundError("no relevant information found in the specified documents")
	}

	if err := s.emit(ctx, events, types.StreamEvent{
		Type:      types.TypeStreamCitations,
		Citations: CitationsFromHits(hits),
	}); err != nil {
		return err
	}

	state = stateGenerating
	genCtx := ctx
	var cancel context.CancelFunc
	if s.genTimeout > 0 {
		genCtx, cancel = context.WithTimeout(ctx, s.genTimeout)
		defer cancel()
	}

	err = s.backend.GenerateStream(genCtx, ragSystemPrompt, s.buildUserMessage(question, hits), func(fragment string) error {
		return s.emit(ctx, events, types.StreamEvent{
			Type:    types.TypeStreamToken,
			Content: fragment,
		})
	})
	if err != nil {
		log.Printf("stream %s -> %s: %v", state, stateFailed, err)
		return err
	}
	return nil
}

// emit delivers an event unless the caller has gone away.
func (s *RAGService) emit(ctx context.Context, events chan<- types.StreamEvent, event types.StreamEvent) error {
	select {
	case events <- event:
		return nil
	case <-ctx.Done():
		return types.NewCancelledError(ctx.Err())
	}
}

// buildUserMessage concatenates chunk texts in retrieval order, each tagged
// with its source document and page, capped at the context budget. When the
// budget would be exceeded the lowest-ranked chunks are dropped first.
func (s *RAGService) buildUserMessage(question string, hits []database.SearchHit) string {
	var sb strings.Builder
	for _, hit := range hits {
		tagged := fmt.Sprintf("[document %s, page %d]\n%s", hit.Chunk.DocumentID, hit.Chunk.Page, hit.Chunk.Content)
		if sb.Len() > 0 {
			if sb.Len()+2+len(tagged) > s.contextBudget {
				break
			}
			sb.WriteString("\n\n")
		} else if len(tagged) > s.contextBudget {
			sb.WriteString(tagged[:s.contextBudget])
			break
		}
		sb.WriteString(tagged)
	}
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", sb.String(), question)
}

// CitationsFromHits converts retrieval hits into caller-facing citations,
// truncating chunk content to a preview.
func CitationsFromHits(hits []database.SearchHit) []types.Citation {
	citations := make([]types.Citation, 0, len(hits))
	for _, hit := range hits {
		content := hit.Chunk.Content
		if len(content) > citationPreviewLen {
			content = content[:citationPreviewLen]
		}
		citations = append(citations, types.Citation{
			DocumentID: hit.Chunk.DocumentID,
			Page:       hit.Chunk.Page,
			Content:    content,
			Score:      hit.Score,
		})
	}
	return citations
}
