package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github/itish2003/medassist/config"
	"github/itish2003/medassist/controller"
	"github/itish2003/medassist/logger"
	"github/itish2003/medassist/services"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	ollamaef "github.com/amikos-tech/chroma-go/pkg/embeddings/ollama"
	"github.com/gin-gonic/gin"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Warnw("failed to close resource", "error", err)
			}
		}
	}()

	httpClient := &http.Client{
		Timeout: cfg.OpenFDA.Timeout,
	}

	embedder, err := newEmbedder(cfg, &closers)
	if err != nil {
		logger.Fatal("failed to create embedder", err)
	}
	store, err := newVectorStore(cfg, embedder, &closers)
	if err != nil {
		logger.Fatal("failed to create vector store", err)
	}
	completer, err := newCompleter(cfg)
	if err != nil {
		logger.Fatal("failed to create completion client", err)
	}
	chunker, err := services.NewChunker(cfg.RAG.Chunker)
	if err != nil {
		logger.Fatal("failed to create chunker", err)
	}

	ragService := services.NewRAGService(
		services.NewLabelService(httpClient, cfg.OpenFDA.BaseURL),
		store,
		services.NewIndexingService(embedder, chunker),
		embedder,
		services.NewAnswerService(completer),
		services.RAGOptions{
			Scope:            cfg.VectorStore.Scope,
			SharedCollection: cfg.VectorStore.Collection,
			TopK:             cfg.RAG.TopK,
		},
	)

	gin.SetMode(cfg.Server.Mode)
	router := controller.NewRouter(
		controller.NewRAGController(ragService),
		controller.NewReminderController(),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Infow("medication assistant starting",
			"addr", "http://localhost:"+cfg.Server.Port,
			"embedding", cfg.Embedding.Provider,
			"vectorstore", cfg.VectorStore.Backend,
			"scope", cfg.VectorStore.Scope,
			"llm", cfg.LLM.Provider,
			"model", cfg.LLM.Model,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", err)
	}
}

func newEmbedder(cfg *config.Config, closers *[]io.Closer) (services.Embedder, error) {
	switch cfg.Embedding.Provider {
	case config.EmbeddingOllama:
		return services.NewOllamaEmbedder(&http.Client{Timeout: 30 * time.Second}, cfg.Embedding.OllamaURL, cfg.Embedding.Model), nil
	case config.EmbeddingDefault:
		e, err := services.NewMiniLMEmbedder()
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, e)
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func newVectorStore(cfg *config.Config, embedder services.Embedder, closers *[]io.Closer) (services.VectorStore, error) {
	switch cfg.VectorStore.Backend {
	case config.BackendChroma:
		ef, err := chromaEmbeddingFunction(cfg, embedder)
		if err != nil {
			return nil, err
		}
		chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.VectorStore.ChromaURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create chroma client: %w", err)
		}
		*closers = append(*closers, chromaClient)
		return services.NewChromaStore(chromaClient, ef), nil
	case config.BackendMemory:
		return services.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown vector store backend %q", cfg.VectorStore.Backend)
	}
}

// chromaEmbeddingFunction picks the function recorded on Chroma collections:
// the already loaded MiniLM model, or chroma-go's Ollama client for the same
// model the Ollama embedder uses.
func chromaEmbeddingFunction(cfg *config.Config, embedder services.Embedder) (embeddings.EmbeddingFunction, error) {
	if m, ok := embedder.(*services.MiniLMEmbedder); ok {
		return m.EmbeddingFunction(), nil
	}
	ef, err := ollamaef.NewOllamaEmbeddingFunction(
		ollamaef.WithBaseURL(cfg.Embedding.OllamaURL),
		ollamaef.WithModel(embeddings.EmbeddingModel(cfg.Embedding.Model)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama embedding function: %w", err)
	}
	return ef, nil
}

func newCompleter(cfg *config.Config) (services.Completer, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  cfg.LLM.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w. Make sure GEMINI_API_KEY is set", err)
		}
		return services.NewGeminiCompleter(geminiClient, cfg.LLM.Model), nil
	case config.ProviderOpenAI:
		// One attempt per request: the SDK's own retries are disabled.
		client := openai.NewClient(
			option.WithAPIKey(cfg.LLM.OpenAIAPIKey),
			option.WithMaxRetries(0),
		)
		return services.NewOpenAICompleter(client, cfg.LLM.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
