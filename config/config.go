package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/types"
)

type Config struct {
	Port         string `mapstructure:"port"`
	AIEndpoint   string `mapstructure:"ai_endpoint"`
	Model        string `mapstructure:"model"`
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	UploadDir    string `mapstructure:"upload_dir"`

	GenerationBackend string   `mapstructure:"generation_backend"` // "openai" or "gemini"
	GeminiAPIKeys     []string `mapstructure:"GEMINI_API_KEYS"`
	GeminiModel       string   `mapstructure:"gemini_model"`
	EmbeddingModel    string   `mapstructure:"embedding_model"`
	EmbeddingBatch    int      `mapstructure:"embedding_batch"`

	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`

	DefaultK int `mapstructure:"default_k"`
	MaxK     int `mapstructure:"max_k"`

	RAGContextBudget     int `mapstructure:"rag_context_budget"`
	ExtractContextBudget int `mapstructure:"extract_context_budget"`
	AuditContextBudget   int `mapstructure:"audit_context_budget"`

	GenerationTimeoutSecs int `mapstructure:"generation_timeout_secs"`
	EmbeddingTimeoutSecs  int `mapstructure:"embedding_timeout_secs"`

	VectorIndexType     string                       `mapstructure:"vector_index"` // "memory" or "weaviate"
	WeaviateIndexConfig database.WeaviateIndexConfig `mapstructure:"weaviate_index_config"`
	MongoDatabase       string                       `mapstructure:"mongo_database"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Defaults are registered with viper before reading so that an explicit
	// zero in the file (e.g. chunk_overlap: 0) stays a zero.
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEYS")
	v.BindEnv("WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("generation_backend", "openai")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("embedding_batch", 32)
	v.SetDefault("chunk_size", 1000)
	v.SetDefault("chunk_overlap", 200)
	v.SetDefault("default_k", 3)
	v.SetDefault("max_k", 10)
	v.SetDefault("rag_context_budget", 6000)
	v.SetDefault("extract_context_budget", 8000)
	v.SetDefault("audit_context_budget", 10000)
	v.SetDefault("generation_timeout_secs", 120)
	v.SetDefault("embedding_timeout_secs", 30)
	v.SetDefault("vector_index", "memory")
	v.SetDefault("upload_dir", "uploaded_contracts")
	v.SetDefault("mongo_database", "contract_analysis")
}

// Validate rejects configurations the pipeline cannot run with. Called once
// at startup; per-request code can assume these invariants hold.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return types.NewConfigError(fmt.Sprintf("chunk_size must be positive, got %d", c.ChunkSize))
	}
	if c.ChunkOverlap < 0 {
		return types.NewConfigError(fmt.Sprintf("chunk_overlap must not be negative, got %d", c.ChunkOverlap))
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return types.NewConfigError(fmt.Sprintf("chunk_overlap (%d) must be smaller than chunk_size (%d)", c.ChunkOverlap, c.ChunkSize))
	}
	if c.DefaultK < 1 || c.DefaultK > c.MaxK {
		return types.NewConfigError(fmt.Sprintf("default_k must be in 1..%d, got %d", c.MaxK, c.DefaultK))
	}
	if c.RAGContextBudget <= 0 || c.ExtractContextBudget <= 0 || c.AuditContextBudget <= 0 {
		return types.NewConfigError("context budgets must be positive")
	}
	switch c.VectorIndexType {
	case "memory", "weaviate":
	default:
		return types.NewConfigError(fmt.Sprintf("unknown vector_index %q", c.VectorIndexType))
	}
	switch c.GenerationBackend {
	case "openai", "gemini":
	default:
		return types.NewConfigError(fmt.Sprintf("unknown generation_backend %q", c.GenerationBackend))
	}
	return nil
}
