package service

import (
	"context"
	"errors"
	"io"

	"github.com/sashabaranov/go-openai"
	"github.com/tieubaoca/contract-analysis-be/types"
)

// OpenAIService is the default GenerationBackend, talking to an
// OpenAI-compatible chat completion API.
type OpenAIService struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAIService(baseURL, apiKey, model string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL // Set this to your local LLM server URL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client: client,
		model:  model,
	}
}

func (s *OpenAIService) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			Model:       s.model,
			Temperature: s.temperature,
		},
	)
	if err != nil {
		return "", classifyGenerationError(err)
	}
	if len(resp.Choices) == 0 {
		return "", types.NewGenerationError("no response generated", false, nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) GenerateStream(ctx context.Context, system, user string, handler types.StreamHandler) error {
	stream, err := s.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			Model:       s.model,
			Temperature: s.temperature,
		},
	)
	if err != nil {
		return classifyGenerationError(err)
	}
	defer stream.Close()
	for {
		if err := ctx.Err(); err != nil {
			return types.NewCancelledError(err)
		}
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return classifyGenerationError(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		fragment := resp.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		if err := handler(fragment); err != nil {
			return err
		}
	}
}

// classifyGenerationError maps provider failures onto the error taxonomy.
// Rate limits and 5xx responses are retryable, malformed requests are not.
func classifyGenerationError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewTimeoutError("generation call timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return types.NewCancelledError(err)
	}
	return types.NewGenerationError("generation request failed", isRetryableProviderError(err), err)
}
