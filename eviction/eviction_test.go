package eviction

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	candidates []int64
	candErr    error
	deleted    []int64
	deleteN    int64
	deleteErr  error
}

func (f *fakeStore) SemanticCacheEvictionCandidates(ctx context.Context, limit int) ([]int64, error) {
	return f.candidates, f.candErr
}

func (f *fakeStore) DeleteSemanticCacheRows(ctx context.Context, ids []int64) (int64, error) {
	f.deleted = ids
	return f.deleteN, f.deleteErr
}

func TestRunOnce_NoCandidates(t *testing.T) {
	store := &fakeStore{}
	r := New(store, Options{})

	removed, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed, got %d", removed)
	}
	if store.deleted != nil {
		t.Fatalf("expected DeleteSemanticCacheRows to be skipped when there are no candidates")
	}
}

func TestRunOnce_DeletesCandidates(t *testing.T) {
	store := &fakeStore{candidates: []int64{1, 2, 3}, deleteN: 3}
	r := New(store, Options{BatchSize: 10})

	removed, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	if len(store.deleted) != 3 {
		t.Fatalf("expected all 3 candidate ids passed to delete, got %v", store.deleted)
	}
}

func TestRunOnce_CandidatesErrorPropagates(t *testing.T) {
	store := &fakeStore{candErr: errors.New("boom")}
	r := New(store, Options{})

	if _, err := r.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error from candidates lookup to propagate")
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.BatchSize != 1000 {
		t.Fatalf("expected default batch size 1000, got %d", o.BatchSize)
	}
	if o.Interval <= 0 {
		t.Fatalf("expected a positive default interval, got %v", o.Interval)
	}
}
