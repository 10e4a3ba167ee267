// Package config loads the server settings from .env, an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config mirrors the YAML layout; every key can be overridden by an
// environment variable (server.port -> SERVER_PORT).
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	OpenFDA     OpenFDAConfig     `mapstructure:"openfda"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	VectorStore VectorStoreConfig `mapstructure:"vectorstore"`
	LLM         LLMConfig         `mapstructure:"llm"`
	RAG         RAGConfig         `mapstructure:"rag"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OpenFDAConfig points at the drug label endpoint.
type OpenFDAConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EmbeddingConfig selects the sentence-embedding backend.
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"`
	OllamaURL string `mapstructure:"ollama_url"`
	Model     string `mapstructure:"model"`
}

// VectorStoreConfig selects where chunks are indexed and how collections are
// scoped across requests.
type VectorStoreConfig struct {
	Backend    string `mapstructure:"backend"`
	Scope      string `mapstructure:"scope"`
	Collection string `mapstructure:"collection"`
	ChromaURL  string `mapstructure:"chroma_url"`
}

type LLMConfig struct {
	Provider     string `mapstructure:"provider"`
	Model        string `mapstructure:"model"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
}

type RAGConfig struct {
	TopK    int    `mapstructure:"top_k"`
	Chunker string `mapstructure:"chunker"`
}

const (
	EmbeddingDefault = "default"
	EmbeddingOllama  = "ollama"

	BackendMemory = "memory"
	BackendChroma = "chroma"

	ScopeRequest = "request"
	ScopeShared  = "shared"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	ChunkerParagraph = "paragraph"
	ChunkerRecursive = "recursive"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("openfda.base_url", "https://api.fda.gov/drug/label.json")
	v.SetDefault("openfda.timeout", 30*time.Second)

	v.SetDefault("embedding.provider", EmbeddingDefault)
	v.SetDefault("embedding.ollama_url", "http://localhost:11434")
	v.SetDefault("embedding.model", "all-minilm")

	v.SetDefault("vectorstore.backend", BackendMemory)
	v.SetDefault("vectorstore.scope", ScopeRequest)
	v.SetDefault("vectorstore.collection", "temp")
	v.SetDefault("vectorstore.chroma_url", "http://localhost:8000")

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.gemini_api_key", "")

	v.SetDefault("rag.top_k", 3)
	v.SetDefault("rag.chunker", ChunkerParagraph)
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment, and returns the validated result.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"llm.openai_api_key":     "OPENAI_API_KEY",
		"llm.gemini_api_key":     "GEMINI_API_KEY",
		"vectorstore.chroma_url": "CHROMA_URL",
		"server.port":            "PORT",
	} {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component knows how to serve.
func (c *Config) Validate() error {
	var errs []error
	switch c.Embedding.Provider {
	case EmbeddingDefault, EmbeddingOllama:
	default:
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider))
	}
	switch c.VectorStore.Backend {
	case BackendMemory, BackendChroma:
	default:
		errs = append(errs, fmt.Errorf("unknown vector store backend %q", c.VectorStore.Backend))
	}
	switch c.VectorStore.Scope {
	case ScopeRequest, ScopeShared:
	default:
		errs = append(errs, fmt.Errorf("unknown collection scope %q", c.VectorStore.Scope))
	}
	if c.VectorStore.Scope == ScopeShared && c.VectorStore.Collection == "" {
		errs = append(errs, errors.New("shared scope needs a collection name"))
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	switch c.RAG.Chunker {
	case ChunkerParagraph, ChunkerRecursive:
	default:
		errs = append(errs, fmt.Errorf("unknown chunker %q", c.RAG.Chunker))
	}
	if c.RAG.TopK <= 0 {
		errs = append(errs, fmt.Errorf("rag.top_k must be positive, got %d", c.RAG.TopK))
	}
	if c.OpenFDA.BaseURL == "" {
		errs = append(errs, errors.New("openfda.base_url is empty"))
	}
	return errors.Join(errs...)
}
