package hotcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soukfinder/searchcore/catalog"
)

type fakeSource struct {
	categories []catalog.Category
	cities     []catalog.City
	txTypes    []catalog.TransactionType
	err        error
	loadCount  int
}

func (f *fakeSource) LoadTopCategories(ctx context.Context, topN int) ([]catalog.Category, error) {
	f.loadCount++
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeSource) LoadCities(ctx context.Context) ([]catalog.City, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cities, nil
}

func (f *fakeSource) LoadTransactionTypes(ctx context.Context) ([]catalog.TransactionType, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.txTypes, nil
}

func TestInitializePublishesSnapshot(t *testing.T) {
	src := &fakeSource{categories: []catalog.Category{{ID: 1}}}
	hc := New(src, time.Minute, 500)
	if err := hc.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	snap := hc.Snapshot()
	if snap == nil || len(snap.Categories) != 1 {
		t.Fatalf("expected published snapshot with 1 category, got %+v", snap)
	}
}

func TestRefreshIfStaleSkipsWhenFresh(t *testing.T) {
	src := &fakeSource{}
	hc := New(src, time.Hour, 500)
	if err := hc.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	loadsAfterInit := src.loadCount
	hc.RefreshIfStale(context.Background())
	if src.loadCount != loadsAfterInit {
		t.Fatalf("expected no reload while fresh, loadCount went from %d to %d", loadsAfterInit, src.loadCount)
	}
}

func TestRefreshFailurePreservesPriorSnapshot(t *testing.T) {
	src := &fakeSource{categories: []catalog.Category{{ID: 7}}}
	hc := New(src, -time.Second, 500) // already stale on first read
	if err := hc.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	src.err = errors.New("boom")
	hc.RefreshIfStale(context.Background())
	snap := hc.Snapshot()
	if snap == nil || len(snap.Categories) != 1 || snap.Categories[0].ID != 7 {
		t.Fatalf("expected prior snapshot preserved after failed refresh, got %+v", snap)
	}
}
