package retrieval

import (
	"context"
	"testing"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/eval"
	"github.com/soukfinder/searchcore/filterbuilder"
	"github.com/soukfinder/searchcore/resultcache"
)

type fakeParser struct {
	intent catalog.Intent
	err    error
}

func (f fakeParser) Parse(ctx context.Context, utterance, language string) (catalog.Intent, error) {
	return f.intent, f.err
}

type fakeLexical struct {
	results map[string][]catalog.Listing
	calls   []string
}

func (f *fakeLexical) LexicalSearchListings(ctx context.Context, tokens []string, language string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error) {
	f.calls = append(f.calls, "lexical")
	return f.results["lexical"], nil
}
func (f *fakeLexical) TitleOnlySearch(ctx context.Context, tokens []string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error) {
	f.calls = append(f.calls, "title")
	return f.results["title"], nil
}
func (f *fakeLexical) FallbackSearch(ctx context.Context, tokens []string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error) {
	f.calls = append(f.calls, "fallback")
	return f.results["fallback"], nil
}
func (f *fakeLexical) LexicalAvailable(ctx context.Context) (bool, error) { return true, nil }

type fakeTrees struct{}

func (fakeTrees) ParentCategory(ctx context.Context, categoryID int64) (*catalog.Category, error) {
	return nil, nil
}

func listing(id int64, cityID int64, boosted bool, rank float64) catalog.Listing {
	return catalog.Listing{ID: id, CityID: cityID, Boosted: boosted, RankScore: rank}
}

func TestSearch_GlobalFallbackWhenNothingMatches(t *testing.T) {
	parser := fakeParser{intent: catalog.Intent{
		Normalized: "sofa",
		Language:   "en",
		Keywords:   []string{"sofa"},
		Confidence: 0.9,
		Category:   &catalog.CategoryRef{ID: 1, Name: "Furniture", Confidence: 0.9},
	}}
	lex := &fakeLexical{results: map[string][]catalog.Listing{
		"lexical":  nil,
		"title":    nil,
		"fallback": {listing(7, 1, false, 0.5)},
	}}
	orch := New(Options{}, parser, nil, lex, fakeTrees{}, nil, nil, nil, resultcache.New(0))

	page, err := orch.Search(context.Background(), Params{Query: "sofa", Language: "en", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Method != "lexical" {
		t.Fatalf("expected lexical fallback method, got %q", page.Method)
	}
	if len(page.Listings) != 1 || page.Listings[0].ID != 7 {
		t.Fatalf("expected the description-fallback hit, got %+v", page.Listings)
	}

	got := make([]int64, len(page.Listings))
	for i, l := range page.Listings {
		got[i] = l.ID
	}
	if r := eval.RecallAtK(got, []int64{7}, 10); r != 1.0 {
		t.Fatalf("expected recall@10 == 1.0 for the known-good hit, got %v", r)
	}
}

func TestSearch_ParseUnresolvedShortCircuits(t *testing.T) {
	parser := fakeParser{intent: catalog.Intent{}}
	orch := New(Options{}, parser, nil, &fakeLexical{}, fakeTrees{}, nil, nil, nil, resultcache.New(0))

	_, err := orch.Search(context.Background(), Params{Query: "x", Language: "en"})
	if err == nil {
		t.Fatal("expected ErrParseUnresolved")
	}
}

func TestSearch_LowConfidenceExcludesCategoryAndUsesTitleSearch(t *testing.T) {
	parser := fakeParser{intent: catalog.Intent{
		Normalized: "chair",
		Language:   "en",
		Keywords:   []string{"chair"},
		Confidence: 0.5, // below default CategoryConfidenceGateLow (0.70)
		Category:   &catalog.CategoryRef{ID: 2, Name: "Furniture", Confidence: 0.5},
	}}
	lex := &fakeLexical{results: map[string][]catalog.Listing{
		"title": {listing(3, 2, true, 0.4)},
	}}
	orch := New(Options{}, parser, nil, lex, fakeTrees{}, nil, nil, nil, resultcache.New(0))

	page, err := orch.Search(context.Background(), Params{Query: "chair", Language: "en", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(lex.calls) == 0 || lex.calls[0] != "title" {
		t.Fatalf("expected title-only search to run first for the low-confidence gate, got %v", lex.calls)
	}
	if len(page.Listings) != 1 || page.Listings[0].ID != 3 {
		t.Fatalf("expected the title-search hit, got %+v", page.Listings)
	}
}

func TestMergeHybrid_DedupsPreferringVectorOrder(t *testing.T) {
	vector := []catalog.Listing{listing(1, 1, false, 0), listing(2, 1, false, 0)}
	lexical := []catalog.Listing{listing(2, 1, false, 0), listing(3, 1, false, 0)}

	merged := mergeHybrid(vector, lexical)
	if len(merged) != 3 {
		t.Fatalf("expected 3 deduped listings, got %d", len(merged))
	}
	if merged[0].ID != 1 || merged[1].ID != 2 || merged[2].ID != 3 {
		t.Fatalf("expected vector-first ordering with novel lexical hits appended, got %+v", merged)
	}
}

func TestSelectMethod(t *testing.T) {
	orch := New(Options{}, nil, nil, nil, nil, nil, nil, nil, nil)

	low := catalog.Intent{Confidence: 0.3}
	if got := orch.selectMethod(context.Background(), low); got != "lexical" {
		t.Fatalf("low confidence: expected lexical, got %q", got)
	}

	mid := catalog.Intent{Confidence: 0.6, Keywords: []string{"a"}}
	if got := orch.selectMethod(context.Background(), mid); got != "hybrid" {
		t.Fatalf("no vector store configured: expected hybrid, got %q", got)
	}
}

func TestPagination(t *testing.T) {
	parser := fakeParser{intent: catalog.Intent{
		Normalized: "x", Language: "en", Keywords: []string{"x"}, Confidence: 0.9,
	}}
	lex := &fakeLexical{results: map[string][]catalog.Listing{
		"lexical": {listing(1, 1, false, 1), listing(2, 1, false, 2), listing(3, 1, false, 3)},
	}}
	orch := New(Options{}, parser, nil, lex, fakeTrees{}, nil, nil, nil, resultcache.New(0))

	page, err := orch.Search(context.Background(), Params{Query: "x", Language: "en", Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected total 3, got %d", page.Total)
	}
	if len(page.Listings) != 1 {
		t.Fatalf("expected page 2 of size 2 over 3 results to hold 1 item, got %d", len(page.Listings))
	}
}
