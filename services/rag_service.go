package services

import (
	"context"
	"fmt"
	"strings"

	"github/itish2003/medassist/config"
	"github/itish2003/medassist/logger"
	"github/itish2003/medassist/models"

	"github.com/google/uuid"
)

// RAGService answers questions about one drug from its label.
type RAGService interface {
	// DrugInfo runs fetch, index, retrieve and answer for one request. Every
	// failure is folded into the returned result.
	DrugInfo(c context.Context, req models.DrugInfoRequest) models.DrugInfoResult
	// Retrieve returns the stored chunks nearest to question, joined by blank
	// lines, nearest first.
	Retrieve(c context.Context, col Collection, question string) (string, error)
}

// RAGOptions controls collection scoping and retrieval depth.
type RAGOptions struct {
	// Scope is config.ScopeRequest (a throwaway collection per request) or
	// config.ScopeShared (SharedCollection, cleared before every index).
	Scope            string
	SharedCollection string
	TopK             int
}

// ragServiceImpl holds the dependencies it needs to do its job
type ragServiceImpl struct {
	labels   LabelService
	store    VectorStore
	indexer  *IndexingService
	embedder Embedder
	answers  *AnswerService
	opts     RAGOptions
}

// NewRAGService creates a new RAG service instance
func NewRAGService(labels LabelService, store VectorStore, indexer *IndexingService, embedder Embedder, answers *AnswerService, opts RAGOptions) RAGService {
	return &ragServiceImpl{
		labels:   labels,
		store:    store,
		indexer:  indexer,
		embedder: embedder,
		answers:  answers,
		opts:     opts,
	}
}

// DrugInfo implements RAGService
func (r *ragServiceImpl) DrugInfo(c context.Context, req models.DrugInfoRequest) models.DrugInfoResult {
	label := r.labels.FetchLabel(c, req.Drug)
	if !label.HasText() {
		return models.DrugInfoResult{Outcome: models.OutcomeNotFound}
	}

	labelContext, err := r.indexAndRetrieve(c, label.Text, req.Question)
	if err != nil {
		logger.Error("rag pipeline failed", err)
		return models.DrugInfoResult{Outcome: models.OutcomePipelineError, Error: err.Error()}
	}

	return models.DrugInfoResult{
		Outcome: models.OutcomeAnswered,
		Answer:  r.answers.Answer(c, labelContext, req.Question),
	}
}

func (r *ragServiceImpl) indexAndRetrieve(c context.Context, text, question string) (string, error) {
	name := r.opts.SharedCollection
	if r.opts.Scope == config.ScopeRequest {
		name = "temp-" + uuid.New().String()
	}

	col, err := r.store.OpenCollection(c, name)
	if err != nil {
		return "", err
	}
	if r.opts.Scope == config.ScopeRequest {
		defer func() {
			// Drop even when the client has gone away.
			if err := r.store.DropCollection(context.WithoutCancel(c), name); err != nil {
				logger.Warnw("failed to drop request collection", "collection", name, "error", err)
			}
		}()
	}

	if _, err := r.indexer.IndexLabel(c, col, text); err != nil {
		return "", err
	}
	return r.Retrieve(c, col, question)
}

// Retrieve implements RAGService
func (r *ragServiceImpl) Retrieve(c context.Context, col Collection, question string) (string, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(c, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed query text: %w", err)
	}

	docs, err := col.Query(c, queryEmbedding, r.opts.TopK)
	if err != nil {
		return "", err
	}
	logger.Infow("retrieved chunks", "collection", col.Name(), "requested", r.opts.TopK, "returned", len(docs))
	return strings.Join(docs, "\n\n"), nil
}
