// Package hotcache holds a process-local, TTL-refreshed snapshot of the
// top categories, all cities, and the closed transaction-type set. The
// snapshot is immutable and published behind an atomic pointer, so reads
// are lock-free after publication; concurrent refreshes coalesce onto one
// in-flight rebuild via golang.org/x/sync/singleflight, and a failed
// rebuild leaves the prior snapshot in place.
package hotcache

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/soukfinder/searchcore/catalog"
)

// Source is the subset of the store this package needs, kept narrow so
// callers can satisfy it with pgstore.Store or a test double.
type Source interface {
	LoadTopCategories(ctx context.Context, topN int) ([]catalog.Category, error)
	LoadCities(ctx context.Context) ([]catalog.City, error)
	LoadTransactionTypes(ctx context.Context) ([]catalog.TransactionType, error)
}

// Snapshot is the immutable published state. Readers hold a reference for
// the duration of a request; a refresh never mutates a Snapshot in place.
type Snapshot struct {
	Categories       []catalog.Category
	Cities           []catalog.City
	TransactionTypes []catalog.TransactionType
	LoadedAt         time.Time
}

// HotCache is the {Empty → Loaded → Stale → Loaded} state machine spec
// §4.10 names. Any transition on refresh failure preserves the prior
// snapshot.
type HotCache struct {
	source Source
	ttl    time.Duration
	topN   int

	snapshot atomic.Pointer[Snapshot]
	sf       singleflight.Group
}

// New constructs a HotCache in the Empty state; call Initialize before
// first use.
func New(source Source, ttl time.Duration, topN int) *HotCache {
	return &HotCache{source: source, ttl: ttl, topN: topN}
}

// Initialize populates all three collections atomically. Readers observe
// either no snapshot (before this returns) or the full new snapshot, never
// a torn mix.
func (h *HotCache) Initialize(ctx context.Context) error {
	snap, err := h.load(ctx)
	if err != nil {
		return fmt.Errorf("hotcache: initialize: %w", err)
	}
	h.snapshot.Store(snap)
	return nil
}

// RefreshIfStale rebuilds the snapshot if the TTL has expired since the
// last successful rebuild. A failed refresh is logged and leaves the prior
// snapshot in place; it never returns an error to the caller, matching
// spec §4.2's "must not crash the process" contract. Concurrent callers
// single-flight onto one in-flight rebuild.
func (h *HotCache) RefreshIfStale(ctx context.Context) {
	current := h.snapshot.Load()
	if current != nil && time.Since(current.LoadedAt) < h.ttl {
		return
	}

	_, err, _ := h.sf.Do("refresh", func() (any, error) {
		// Re-check inside the single-flight group: another goroutine may
		// have just published a fresh snapshot while we waited to enter.
		if cur := h.snapshot.Load(); cur != nil && time.Since(cur.LoadedAt) < h.ttl {
			return nil, nil
		}
		snap, err := h.load(ctx)
		if err != nil {
			return nil, err
		}
		h.snapshot.Store(snap)
		return nil, nil
	})
	if err != nil {
		log.Printf("searchcore: hotcache refresh failed: %v", err)
	}
}

func (h *HotCache) load(ctx context.Context) (*Snapshot, error) {
	categories, err := h.source.LoadTopCategories(ctx, h.topN)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	cities, err := h.source.LoadCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cities: %w", err)
	}
	txTypes, err := h.source.LoadTransactionTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transaction types: %w", err)
	}
	return &Snapshot{
		Categories:       categories,
		Cities:           cities,
		TransactionTypes: txTypes,
		LoadedAt:         time.Now(),
	}, nil
}

// Snapshot returns the current published snapshot, or nil if Initialize
// has never succeeded. Reads are lock-free after publication.
func (h *HotCache) Snapshot() *Snapshot {
	return h.snapshot.Load()
}
