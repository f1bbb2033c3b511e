/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/tieubaoca/contract-analysis-be/config"
	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/service"
)

const defaultConfigPath = "config/config.yaml"

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return defaultConfigPath
}

func newVectorIndex(cfg *config.Config) (database.VectorIndex, error) {
	switch cfg.VectorIndexType {
	case "weaviate":
		return database.NewWeaviateIndex(cfg.WeaviateIndexConfig)
	case "memory":
		return database.NewMemoryIndex(), nil
	default:
		return nil, fmt.Errorf("unknown vector_index %q", cfg.VectorIndexType)
	}
}

func newGenerationBackend(cfg *config.Config) (service.GenerationBackend, error) {
	switch cfg.GenerationBackend {
	case "gemini":
		return service.NewGeminiService(cfg.GeminiAPIKeys, cfg.GeminiModel)
	case "openai":
		return service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown generation_backend %q", cfg.GenerationBackend)
	}
}

func newEmbedder(cfg *config.Config) service.Embedder {
	return service.NewEmbeddingService(
		cfg.AIEndpoint,
		cfg.OpenAIAPIKey,
		cfg.EmbeddingModel,
		cfg.EmbeddingBatch,
		time.Duration(cfg.EmbeddingTimeoutSecs)*time.Second,
	)
}
