package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/tieubaoca/contract-analysis-be/types"
)

// Embedder converts texts into fixed-dimension vectors, preserving input
// order and length. Implementations perform no caching and no retries; the
// caller decides retry policy from the error's retryable flag.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingService embeds texts through an OpenAI-compatible embeddings API.
type EmbeddingService struct {
	client    *openai.Client
	model     string
	batchSize int
	timeout   time.Duration
}

func NewEmbeddingService(baseURL, apiKey, model string, batchSize int, timeout time.Duration) *EmbeddingService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	if batchSize <= 0 {
		batchSize = 32
	}
	return &EmbeddingService{
		client:    client,
		model:     model,
		batchSize: batchSize,
		timeout:   timeout,
	}
}

func (s *EmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := 0; i < len(texts); i += s.batchSize {
		end := i + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		if err := s.embedBatch(ctx, texts[i:end], vectors[i:end]); err != nil {
			return nil, err
		}
	}
	return vectors, nil
}

func (s *EmbeddingService) embedBatch(ctx context.Context, texts []string, out [][]float32) error {
	batchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.CreateEmbeddings(batchCtx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(s.model),
		Input: texts,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return types.NewTimeoutError("embedding call timed out", err)
		}
		if errors.Is(err, context.Canceled) {
			return types.NewCancelledError(err)
		}
		return types.NewEmbeddingProviderError("embedding request failed", isRetryableProviderError(err), err)
	}
	if len(resp.Data) != len(texts) {
		return types.NewEmbeddingProviderError(
			fmt.Sprintf("provider returned %d embeddings for %d inputs", len(resp.Data), len(texts)), false, nil)
	}
	// Data carries an Index per item; place by it rather than trusting
	// response order.
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return types.NewEmbeddingProviderError(fmt.Sprintf("embedding index %d out of range", d.Index), false, nil)
		}
		out[d.Index] = d.Embedding
	}
	return nil
}

// isRetryableProviderError reports whether an OpenAI API failure is worth
// retrying: rate limits and server-side errors are, malformed requests and
// auth failures are not.
func isRetryableProviderError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	// Transport-level failures (connection reset, DNS) are retryable.
	return true
}
