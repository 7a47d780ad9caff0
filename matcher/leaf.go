package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/soukfinder/searchcore/catalog"
)

// LeafStore is the subset of pgstore.Store leaf-category resolution needs.
type LeafStore interface {
	ActiveDescendants(ctx context.Context, parentID int64) ([]catalog.Category, error)
}

// FindLeafCategory implements spec §4.3.1's recursive leaf-preference step
// and §4.3.4: among parentID's active leaf descendants, rank by
// max(similarity(name, hints), max_keyword_similarity) and return the best.
func FindLeafCategory(ctx context.Context, store LeafStore, parentID int64, hints []string, language string) (*catalog.CategoryRef, error) {
	leaves, err := store.ActiveDescendants(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("matcher: active descendants: %w", err)
	}
	if len(leaves) == 0 {
		return nil, nil
	}

	var best *catalog.Category
	var bestScore float64
	for i := range leaves {
		leaf := leaves[i]
		score := leafScore(leaf, hints, language)
		if best == nil || score > bestScore {
			best = &leaves[i]
			bestScore = score
		}
	}
	if best == nil {
		return nil, nil
	}
	return toCategoryRef(*best, language, bestScore), nil
}

func leafScore(c catalog.Category, hints []string, language string) float64 {
	name := strings.ToLower(c.Name(language))
	best := 0.0
	for _, h := range hints {
		if s := matchr.JaroWinkler(name, strings.ToLower(h), false); s > best {
			best = s
		}
		for _, kw := range c.Keywords(language) {
			if s := matchr.JaroWinkler(strings.ToLower(kw), strings.ToLower(h), false); s > best {
				best = s
			}
		}
	}
	return best
}
