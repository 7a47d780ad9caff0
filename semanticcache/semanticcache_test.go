package semanticcache

import (
	"context"
	"errors"
	"testing"

	"github.com/soukfinder/searchcore/catalog"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f fakeEmbedder) Dimensions() int { return len(f.vec) }
func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

type fakeStore struct {
	lookupIntent *catalog.Intent
	storedText   string
	storedVec    []float32
	storedIntent catalog.Intent
}

func (f *fakeStore) SemanticCacheLookup(ctx context.Context, queryVec []float32, threshold float64) (*catalog.Intent, error) {
	return f.lookupIntent, nil
}

func (f *fakeStore) SemanticCacheStore(ctx context.Context, normalizedText string, queryVec []float32, intent catalog.Intent) error {
	f.storedText = normalizedText
	f.storedVec = queryVec
	f.storedIntent = intent
	return nil
}

func TestStoreThenLookupRoundTrip(t *testing.T) {
	store := &fakeStore{}
	c := New(fakeEmbedder{vec: []float32{1, 0}}, store, 0.92)

	intent := catalog.Intent{Normalized: "سياره تويوتا", Confidence: 0.9}
	if err := c.Store(context.Background(), intent.Normalized, intent); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if store.storedText != intent.Normalized {
		t.Fatalf("expected upsert keyed on normalized text, got %q", store.storedText)
	}

	store.lookupIntent = &store.storedIntent
	got, err := c.Lookup(context.Background(), intent.Normalized)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil || got.Normalized != intent.Normalized || got.Confidence != intent.Confidence {
		t.Fatalf("Lookup returned %+v, want the stored intent back", got)
	}
}

func TestLookupSurfacesEmbedderFailure(t *testing.T) {
	c := New(fakeEmbedder{err: errors.New("embedder down")}, &fakeStore{}, 0.92)

	if _, err := c.Lookup(context.Background(), "anything"); err == nil {
		t.Fatal("expected an error when the embedder is unavailable")
	}
}

func TestLookupMissReturnsNil(t *testing.T) {
	c := New(fakeEmbedder{vec: []float32{1, 0}}, &fakeStore{}, 0.92)

	got, err := c.Lookup(context.Background(), "never seen")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil on a cache miss, got %+v", got)
	}
}
