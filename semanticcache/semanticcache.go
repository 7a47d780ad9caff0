// Package semanticcache implements spec §4.5's SemanticCache: a
// vector-keyed lookup of previously parsed intents.
package semanticcache

import (
	"context"
	"fmt"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/llm"
)

// Store is the subset of pgstore.Store the semantic cache needs.
type Store interface {
	SemanticCacheLookup(ctx context.Context, queryVec []float32, threshold float64) (*catalog.Intent, error)
	SemanticCacheStore(ctx context.Context, normalizedText string, queryVec []float32, intent catalog.Intent) error
}

// Cache embeds normalized utterances and looks up/stores Intents by cosine
// similarity against the store.
type Cache struct {
	embedder  llm.Embedder
	store     Store
	threshold float64
}

// New constructs a Cache. threshold is spec §6's
// SEMANTIC_CACHE_SIMILARITY_THRESHOLD (default 0.92).
func New(embedder llm.Embedder, store Store, threshold float64) *Cache {
	return &Cache{embedder: embedder, store: store, threshold: threshold}
}

// Lookup implements spec §4.5's lookup(normalizedText). A caller-supplied
// embedding failure is surfaced as an error so TieredParser can treat it as
// ErrEmbeddingUnavailable; any other failure is the caller's decision
// whether to treat as best-effort.
func (c *Cache) Lookup(ctx context.Context, normalizedText string) (*catalog.Intent, error) {
	vec, err := c.embedder.Embed(ctx, normalizedText)
	if err != nil {
		return nil, fmt.Errorf("semanticcache: embed: %w", err)
	}
	intent, err := c.store.SemanticCacheLookup(ctx, vec, c.threshold)
	if err != nil {
		return nil, fmt.Errorf("semanticcache: lookup: %w", err)
	}
	return intent, nil
}

// Store implements spec §4.5's store(normalizedText, intent): upsert by
// normalized text, incrementing hit count on conflict (pgstore's
// responsibility; this just re-embeds and delegates).
func (c *Cache) Store(ctx context.Context, normalizedText string, intent catalog.Intent) error {
	vec, err := c.embedder.Embed(ctx, normalizedText)
	if err != nil {
		return fmt.Errorf("semanticcache: embed: %w", err)
	}
	if err := c.store.SemanticCacheStore(ctx, normalizedText, vec, intent); err != nil {
		return fmt.Errorf("semanticcache: store: %w", err)
	}
	return nil
}
