// Package retrieval finds knowledge snippets relevant to a user query.
//
// The engine retrieves once per NEW turn and feeds the snippets into the
// draft prompt. Two backends exist: a deterministic in-memory corpus for
// tests and demos, and a Weaviate nearText search for deployments with a
// populated vector index. Both sit behind an LRU+TTL cache.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/yooncheol/bapsang/internal/config"
	"github.com/yooncheol/bapsang/internal/logging"
)

// Snippet is one retrieved knowledge fragment.
type Snippet struct {
	// Text is the snippet content.
	Text string `json:"text"`

	// Score is the backend's relevance estimate in [0, 1].
	Score float64 `json:"score"`

	// Source names where the snippet came from.
	Source string `json:"source"`
}

// Retriever finds the topK most relevant snippets for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Snippet, error)
}

// New builds the retriever selected by cfg.Backend and wraps it in the
// cache layer.
func New(cfg config.RetrievalConfig, logger *logging.Logger) (Retriever, error) {
	var inner Retriever
	switch cfg.Backend {
	case "memory", "":
		inner = NewCorpusRetriever()
	case "weaviate":
		w, err := NewWeaviateRetriever(cfg.Weaviate)
		if err != nil {
			return nil, err
		}
		bootstrapWeaviate(w, logger)
		inner = w
	default:
		return nil, fmt.Errorf("unknown retrieval backend %q", cfg.Backend)
	}

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	return NewCachingRetriever(inner, cfg.CacheEntries, ttl, logger)
}

// bootstrapWeaviate creates the class on a fresh instance and seeds it
// with the built-in corpus so nearText has something to return. Failures
// are logged, not fatal: the instance may simply not be up yet.
func bootstrapWeaviate(w *WeaviateRetriever, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := w.EnsureSchema(ctx)
	if err != nil {
		logger.Warn("weaviate schema check failed: %v", err)
		return
	}
	if !created {
		return
	}

	docs := builtinCorpus()
	if err := w.Seed(ctx, docs); err != nil {
		logger.Warn("weaviate corpus seed failed: %v", err)
		return
	}
	logger.Info("seeded weaviate class %s with %d starter documents", w.class, len(docs))
}
