package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/tieubaoca/contract-analysis-be/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiService is an alternate GenerationBackend on Google's Gemini API.
// Multiple API keys are rotated when a call fails, which spreads quota
// pressure across keys.
type GeminiService struct {
	apiKeys    []string
	currentKey int
	client     *genai.Client
	modelName  string
	mu         sync.Mutex
}

func NewGeminiService(apiKeys []string, modelName string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	service := &GeminiService{
		apiKeys:    apiKeys,
		currentKey: 0,
		modelName:  modelName,
	}

	if err := service.initClient(); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *GeminiService) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	return s.initClient()
}

// generativeModel builds a model for a single call. Concurrent requests carry
// different system instructions, so the model is never shared between calls.
func (s *GeminiService) generativeModel(system string) *genai.GenerativeModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	return model
}

func (s *GeminiService) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := s.generativeModel(system).GenerateContent(ctx, genai.Text(user))
	if err != nil {
		// Try rotating API key if there's an error
		if rotateErr := s.rotateAPIKey(); rotateErr != nil {
			return "", classifyGeminiError(err)
		}
		resp, err = s.generativeModel(system).GenerateContent(ctx, genai.Text(user))
		if err != nil {
			return "", classifyGeminiError(err)
		}
	}

	if len(resp.Candidates) == 0 {
		return "", types.NewGenerationError("no response generated", false, nil)
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}

	return content, nil
}

func (s *GeminiService) GenerateStream(ctx context.Context, system, user string, handler types.StreamHandler) error {
	iter := s.generativeModel(system).GenerateContentStream(ctx, genai.Text(user))

	for {
		if err := ctx.Err(); err != nil {
			return types.NewCancelledError(err)
		}
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return classifyGeminiError(err)
		}

		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				text, ok := part.(genai.Text)
				if !ok || text == "" {
					continue
				}
				if err := handler(string(text)); err != nil {
					return err
				}
			}
		}
	}
}

func classifyGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewTimeoutError("generation call timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return types.NewCancelledError(err)
	}
	// The genai client does not expose status codes uniformly; treat
	// provider failures as retryable and let the caller back off.
	return types.NewGenerationError("generation request failed", true, err)
}
