// Package eviction implements the semantic-cache eviction job spec §3's
// lifecycle section and §9's open questions both mention ("hit_count < 2
// AND age > 7d; or age > 30d") but leave unwired to a scheduled job.
// Grounded directly on the teacher's worker/searchkit_worker.go
// RunOnceSearchkit-plus-ticker shape (runtime/runtime.go's backfillLoop):
// a RunOnce function callers can test/drive directly, and a ticker-driven
// Run loop for production use.
package eviction

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Store is the subset of pgstore.Store the eviction job needs.
type Store interface {
	SemanticCacheEvictionCandidates(ctx context.Context, limit int) ([]int64, error)
	DeleteSemanticCacheRows(ctx context.Context, ids []int64) (int64, error)
}

// Options configures the eviction job, following the teacher's
// Options-struct-with-withDefaults convention.
type Options struct {
	// Interval between sweeps.
	Interval time.Duration
	// BatchSize bounds how many rows one sweep deletes.
	BatchSize int
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 10 * time.Minute
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 1000
	}
	return o
}

// Runner drives periodic semantic-cache eviction sweeps.
type Runner struct {
	store Store
	opts  Options
}

// New constructs a Runner.
func New(store Store, opts Options) *Runner {
	return &Runner{store: store, opts: opts.withDefaults()}
}

// RunOnce performs a single eviction sweep: it fetches eviction candidates
// (spec §9's policy, implemented in pgstore.SemanticCacheEvictionCandidates)
// and deletes them, returning the number of rows removed.
func (r *Runner) RunOnce(ctx context.Context) (int64, error) {
	ids, err := r.store.SemanticCacheEvictionCandidates(ctx, r.opts.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("eviction: candidates: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	removed, err := r.store.DeleteSemanticCacheRows(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("eviction: delete: %w", err)
	}
	return removed, nil
}

// Run loops RunOnce on Options.Interval until ctx is cancelled. A failed
// sweep is logged and never stops the loop, matching the teacher's
// worker.go ticker loops (best-effort background work, no caller to
// surface an error to).
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := r.RunOnce(ctx)
			if err != nil {
				log.Printf("searchcore: eviction sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("searchcore: eviction sweep removed %d semantic-cache rows", removed)
			}
		}
	}
}
