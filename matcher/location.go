package matcher

import (
	"context"
	"fmt"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/hotcache"
	"github.com/soukfinder/searchcore/internal/normalize"
	"github.com/soukfinder/searchcore/internal/translit"
)

// LocationStore is the subset of pgstore.Store location matching needs.
type LocationStore interface {
	MatchCityTrigram(ctx context.Context, token string, language string) (*catalog.City, float64, error)
	MatchNeighborhoodTrigram(ctx context.Context, token string, language string) (*catalog.Neighborhood, float64, error)
}

// MatchLocation implements spec §4.3.2: stopword-filtered tokens of length
// > 2, tried against HotCache then city/neighborhood trigram similarity.
func MatchLocation(ctx context.Context, snap *hotcache.Snapshot, store LocationStore, tokens []string, language string) (*catalog.LocationRef, error) {
	candidates := normalize.MeaningfulTokens(tokens)
	if len(candidates) == 0 {
		return nil, nil
	}

	// Strategy 1: HotCache hit (conf 0.95).
	if ref, ok := hotLocationMatch(snap, candidates, language); ok {
		return ref, nil
	}

	// Strategy 2: city trigram similarity > 0.4 or substring containment,
	// both applied by the store query (conf 0.90).
	for _, tok := range candidates {
		city, _, err := store.MatchCityTrigram(ctx, tok, language)
		if err != nil {
			return nil, fmt.Errorf("matcher: city trigram: %w", err)
		}
		if city != nil {
			return &catalog.LocationRef{ID: city.ID, Kind: catalog.LocationCity, Name: cityName(*city, language), Confidence: 0.90}, nil
		}
	}

	// Strategy 3: neighborhood trigram similarity (conf 0.85).
	for _, tok := range candidates {
		hood, sim, err := store.MatchNeighborhoodTrigram(ctx, tok, language)
		if err != nil {
			return nil, fmt.Errorf("matcher: neighborhood trigram: %w", err)
		}
		if hood != nil && sim > 0.4 {
			return &catalog.LocationRef{ID: hood.ID, Kind: catalog.LocationNeighborhood, Name: neighborhoodName(*hood, language), Confidence: 0.85}, nil
		}
	}

	// Strategy 4: Latin-script transliteration fallback against HotCache
	// city/province names, for queries typed in Latin letters.
	if translit.IsLatinQuery(joinTokens(candidates)) {
		if ref, ok := hotLocationMatchTranslit(snap, candidates); ok {
			return ref, nil
		}
	}

	return nil, nil
}

func cityName(c catalog.City, language string) string {
	if language == "ar" {
		return c.NameAr
	}
	return c.NameEn
}

func neighborhoodName(n catalog.Neighborhood, language string) string {
	if language == "ar" {
		return n.NameAr
	}
	return n.NameEn
}

