// Package observe provides the OpenTelemetry metric instruments spec §5
// names: tier0..tier4/total parse-tier counters and retrieval-method
// counters, "incremented under relaxed atomicity; exact values are not
// required for correctness." Grounded on glyphoxa's internal/observe/metrics.go
// (an otel.Meter-backed Metrics struct with convenience Record* methods),
// adapted from its voice-pipeline instruments to searchcore's parse/search
// pipeline.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/soukfinder/searchcore"

// Metrics holds every OpenTelemetry instrument searchcore records. All
// fields are safe for concurrent use; the underlying OTel types handle
// their own synchronization.
type Metrics struct {
	// ParseTier counts TieredParser.Parse outcomes by tier (0..4). Use
	// with attribute.Int("tier", n).
	ParseTier metric.Int64Counter

	// ParseTotal counts every Parse call regardless of outcome.
	ParseTotal metric.Int64Counter

	// RetrievalMethod counts RetrievalOrchestrator.Search outcomes by
	// method ("vector"|"lexical"|"hybrid"). Use with
	// attribute.String("method", m).
	RetrievalMethod metric.Int64Counter

	// CacheHit counts cache hits by cache name ("exact"|"semantic"|"result").
	CacheHit metric.Int64Counter

	// CacheMiss counts cache misses by the same cache-name attribute.
	CacheMiss metric.Int64Counter
}

// NewMetrics creates a fully initialized Metrics using mp. Returns an error
// if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	met := &Metrics{}
	var err error

	if met.ParseTier, err = m.Int64Counter("searchcore.parse.tier",
		metric.WithDescription("Parse calls by resolved tier (0..4)."),
	); err != nil {
		return nil, err
	}
	if met.ParseTotal, err = m.Int64Counter("searchcore.parse.total",
		metric.WithDescription("Total Parse calls."),
	); err != nil {
		return nil, err
	}
	if met.RetrievalMethod, err = m.Int64Counter("searchcore.retrieval.method",
		metric.WithDescription("Search calls by retrieval method."),
	); err != nil {
		return nil, err
	}
	if met.CacheHit, err = m.Int64Counter("searchcore.cache.hit",
		metric.WithDescription("Cache hits by cache name."),
	); err != nil {
		return nil, err
	}
	if met.CacheMiss, err = m.Int64Counter("searchcore.cache.miss",
		metric.WithDescription("Cache misses by cache name."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level Metrics instance, creating it on
// first call using otel.GetMeterProvider. Panics if instrument creation
// fails, which should not happen against the global (possibly no-op)
// provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordParseTier records one Parse call resolved at the given tier.
func (m *Metrics) RecordParseTier(ctx context.Context, tier int) {
	if m == nil {
		return
	}
	m.ParseTier.Add(ctx, 1, metric.WithAttributes(attribute.Int("tier", tier)))
	m.ParseTotal.Add(ctx, 1)
}

// RecordRetrievalMethod records one Search call that used method.
func (m *Metrics) RecordRetrievalMethod(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.RetrievalMethod.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// RecordCacheHit records a hit against the named cache.
func (m *Metrics) RecordCacheHit(ctx context.Context, cache string) {
	if m == nil {
		return
	}
	m.CacheHit.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cache)))
}

// RecordCacheMiss records a miss against the named cache.
func (m *Metrics) RecordCacheMiss(ctx context.Context, cache string) {
	if m == nil {
		return
	}
	m.CacheMiss.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cache)))
}
