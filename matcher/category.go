package matcher

import (
	"context"
	"fmt"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/hotcache"
	"github.com/soukfinder/searchcore/internal/normalize"
	"github.com/soukfinder/searchcore/internal/translit"
)

// CategoryStore is the subset of pgstore.Store category matching needs.
type CategoryStore interface {
	CandidateCategoriesByKeyword(ctx context.Context, tokens []string, language string) ([]catalog.Category, error)
	MatchCategoryMetaKeyword(ctx context.Context, tokens []string, language string) (*catalog.Category, error)
	MatchCategoryFullText(ctx context.Context, query string, language string) (*catalog.Category, error)
	MatchCategoryTrigram(ctx context.Context, firstToken string, language string) (*catalog.Category, float64, error)
}

// MatchCategory implements spec §4.3.1: the five ordered strategies, first
// non-null wins, followed by a sixth Latin-transliteration strategy.
func MatchCategory(ctx context.Context, snap *hotcache.Snapshot, store CategoryStore, tokens []string, language string) (*catalog.CategoryRef, error) {
	meaningful := normalize.MeaningfulTokens(tokens)
	if len(meaningful) == 0 {
		return nil, nil
	}

	// Strategy 1: HotCache keyword hit (conf 0.95).
	if ref, ok := hotCategoryMatch(snap, meaningful, language); ok {
		return ref, nil
	}

	// Strategy 2: DB keyword-array match (conf 0.70 or 0.95).
	candidates, err := store.CandidateCategoriesByKeyword(ctx, meaningful, language)
	if err != nil {
		return nil, fmt.Errorf("matcher: candidate categories: %w", err)
	}
	if best, matched := bestKeywordCandidate(candidates, meaningful, language); best != nil {
		conf := 0.70
		if matched >= 2 {
			conf = 0.95
		}
		return toCategoryRef(*best, language, conf), nil
	}

	// Strategy 3: DB meta-keyword ILIKE (conf 0.85).
	if meta, err := store.MatchCategoryMetaKeyword(ctx, meaningful, language); err != nil {
		return nil, fmt.Errorf("matcher: meta keyword match: %w", err)
	} else if meta != nil {
		return toCategoryRef(*meta, language, 0.85), nil
	}

	// Strategy 4: full-text search (conf 0.85).
	query := joinTokens(meaningful)
	if fts, err := store.MatchCategoryFullText(ctx, query, language); err != nil {
		return nil, fmt.Errorf("matcher: full text match: %w", err)
	} else if fts != nil {
		return toCategoryRef(*fts, language, 0.85), nil
	}

	// Strategy 5: trigram similarity of the first token (conf 0.75).
	if tri, sim, err := store.MatchCategoryTrigram(ctx, meaningful[0], language); err != nil {
		return nil, fmt.Errorf("matcher: trigram match: %w", err)
	} else if tri != nil && sim > 0.3 {
		return toCategoryRef(*tri, language, 0.75), nil
	}

	// Strategy 6: Latin-script transliteration fallback, for a query typed
	// in Latin letters against Arabic keyword data (e.g. "sayara" matching
	// "سيارة"). Only attempted once the DB-backed strategies above have all
	// missed, and only when the meaningful tokens look Latin rather than
	// Arabic.
	if translit.IsLatinQuery(joinTokens(meaningful)) {
		if ref, ok := hotCategoryMatchTranslit(snap, meaningful); ok {
			return ref, nil
		}
	}

	return nil, nil
}

// bestKeywordCandidate ranks candidates by (count of distinct tokens
// matched DESC, level DESC, sort_order ASC) and returns the top row plus
// its match count.
func bestKeywordCandidate(candidates []catalog.Category, tokens []string, language string) (*catalog.Category, int) {
	var best *catalog.Category
	bestCount := -1
	for i := range candidates {
		c := candidates[i]
		count := countMatches(c.Keywords(language), tokens)
		if count == 0 {
			continue
		}
		if best == nil ||
			count > bestCount ||
			(count == bestCount && betterTieBreak(c, *best)) {
			best = &c
			bestCount = count
		}
	}
	return best, bestCount
}

// betterTieBreak implements "tie-breaking at equal score prefers deeper
// (higher-level) categories" (spec §4.3.1).
func betterTieBreak(candidate, current catalog.Category) bool {
	if candidate.Level != current.Level {
		return candidate.Level > current.Level
	}
	return candidate.SortOrder < current.SortOrder
}

func toCategoryRef(c catalog.Category, language string, confidence float64) *catalog.CategoryRef {
	return &catalog.CategoryRef{
		ID:         c.ID,
		Slug:       c.Slug,
		Name:       c.Name(language),
		Level:      c.Level,
		Confidence: confidence,
	}
}

func joinTokens(tokens []string) string {
	s := ""
	for i, t := range tokens {
		if i > 0 {
			s += " "
		}
		s += t
	}
	return s
}
