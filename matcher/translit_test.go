package matcher

import (
	"context"
	"testing"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/hotcache"
	"github.com/soukfinder/searchcore/internal/translit"
)

func testSnapshot() *hotcache.Snapshot {
	return &hotcache.Snapshot{
		Categories: []catalog.Category{
			{ID: 1, Slug: "cars", NameAr: "سيارات", NameEn: "Cars", KeywordsAr: []string{"سيارة"}},
		},
		Cities: []catalog.City{
			{ID: 1, NameAr: "دمشق", NameEn: "Damascus", ProvinceAr: "دمشق", ProvinceEn: "Damascus"},
		},
	}
}

type emptyCategoryStore struct{}

func (emptyCategoryStore) CandidateCategoriesByKeyword(ctx context.Context, tokens []string, language string) ([]catalog.Category, error) {
	return nil, nil
}
func (emptyCategoryStore) MatchCategoryMetaKeyword(ctx context.Context, tokens []string, language string) (*catalog.Category, error) {
	return nil, nil
}
func (emptyCategoryStore) MatchCategoryFullText(ctx context.Context, query string, language string) (*catalog.Category, error) {
	return nil, nil
}
func (emptyCategoryStore) MatchCategoryTrigram(ctx context.Context, firstToken string, language string) (*catalog.Category, float64, error) {
	return nil, 0, nil
}

type emptyLocationStore struct{}

func (emptyLocationStore) MatchCityTrigram(ctx context.Context, token string, language string) (*catalog.City, float64, error) {
	return nil, 0, nil
}
func (emptyLocationStore) MatchNeighborhoodTrigram(ctx context.Context, token string, language string) (*catalog.Neighborhood, float64, error) {
	return nil, 0, nil
}

func TestMatchCategory_LatinTransliterationFallback(t *testing.T) {
	snap := testSnapshot()
	// Use the exact ASCII transliteration of the keyword itself so the
	// Jaro-Winkler fuzzy comparison is a guaranteed match regardless of
	// Unidecode's specific Arabic phonetic table.
	token := translit.ASCII("سيارة")
	ref, err := MatchCategory(context.Background(), snap, emptyCategoryStore{}, []string{token}, "en")
	if err != nil {
		t.Fatalf("MatchCategory: %v", err)
	}
	if ref == nil || ref.ID != 1 {
		t.Fatalf("expected the transliteration fallback to resolve category 1, got %+v", ref)
	}
}

func TestMatchCategory_ArabicQueryNeverUsesTranslitFallback(t *testing.T) {
	snap := testSnapshot()
	// A token that matches nothing, in Arabic script, must not spuriously
	// fall through to the Latin-only transliteration strategy.
	ref, err := MatchCategory(context.Background(), snap, emptyCategoryStore{}, []string{"غرفة"}, "ar")
	if err != nil {
		t.Fatalf("MatchCategory: %v", err)
	}
	if ref != nil {
		t.Fatalf("expected no match for an unrelated Arabic token, got %+v", ref)
	}
}

func TestMatchLocation_LatinTransliterationFallback(t *testing.T) {
	snap := testSnapshot()
	token := translit.ASCII("دمشق")
	ref, err := MatchLocation(context.Background(), snap, emptyLocationStore{}, []string{token}, "en")
	if err != nil {
		t.Fatalf("MatchLocation: %v", err)
	}
	if ref == nil || ref.ID != 1 {
		t.Fatalf("expected the transliteration fallback to resolve city 1, got %+v", ref)
	}
}
