package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/contract-analysis-be/types"
)

func validConfig() *Config {
	return &Config{
		Port:                  "8000",
		Model:                 "gpt-4o-mini",
		GenerationBackend:     "openai",
		EmbeddingModel:        "text-embedding-3-small",
		EmbeddingBatch:        32,
		ChunkSize:             1000,
		ChunkOverlap:          200,
		DefaultK:              3,
		MaxK:                  10,
		RAGContextBudget:      6000,
		ExtractContextBudget:  8000,
		AuditContextBudget:    10000,
		GenerationTimeoutSecs: 120,
		EmbeddingTimeoutSecs:  30,
		VectorIndexType:       "memory",
		UploadDir:             "uploaded_contracts",
		MongoDatabase:         "contract_analysis",
	}
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9000\"\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.DefaultK)
	assert.Equal(t, 10, cfg.MaxK)
	assert.Equal(t, "memory", cfg.VectorIndexType)
	assert.Equal(t, "openai", cfg.GenerationBackend)
}

func TestLoadConfig_ExplicitZeroOverlapKept(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_overlap: 0\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.ChunkOverlap)
	// The neighbouring defaults still land.
	assert.Equal(t, 1000, cfg.ChunkSize)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"overlap not below size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"default k above max", func(c *Config) { c.DefaultK = c.MaxK + 1 }},
		{"zero default k", func(c *Config) { c.DefaultK = 0 }},
		{"zero context budget", func(c *Config) { c.RAGContextBudget = 0 }},
		{"unknown vector index", func(c *Config) { c.VectorIndexType = "pinecone" }},
		{"unknown backend", func(c *Config) { c.GenerationBackend = "llama" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, types.ErrKindConfig, types.KindOf(err))
		})
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}
