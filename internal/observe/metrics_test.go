package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	met := findMetric(rm, name)
	if met == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) == 0 {
		t.Fatalf("metric %q has no int64 sum data points", name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordParseTier_IncrementsTierAndTotal(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordParseTier(ctx, 1)
	m.RecordParseTier(ctx, 1)
	m.RecordParseTier(ctx, 3)

	rm := collect(t, reader)
	if got := sumValue(t, rm, "searchcore.parse.tier"); got != 3 {
		t.Errorf("parse.tier total = %d, want 3", got)
	}
	if got := sumValue(t, rm, "searchcore.parse.total"); got != 3 {
		t.Errorf("parse.total = %d, want 3", got)
	}
}

func TestRecordCacheHitMiss(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCacheHit(ctx, "exact")
	m.RecordCacheMiss(ctx, "exact")
	m.RecordCacheMiss(ctx, "semantic")

	rm := collect(t, reader)
	if got := sumValue(t, rm, "searchcore.cache.hit"); got != 1 {
		t.Errorf("cache.hit = %d, want 1", got)
	}
	if got := sumValue(t, rm, "searchcore.cache.miss"); got != 2 {
		t.Errorf("cache.miss = %d, want 2", got)
	}
}

func TestNilMetrics_RecordMethodsAreNoOps(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	// None of these must panic on a nil receiver.
	m.RecordParseTier(ctx, 0)
	m.RecordRetrievalMethod(ctx, "vector")
	m.RecordCacheHit(ctx, "result")
	m.RecordCacheMiss(ctx, "result")
}

func TestDefaultMetrics_ReturnsSameInstance(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics returned different pointers")
	}
}
