package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// ProviderConfig configures the metrics-only OTel SDK setup searchcore
// needs; there is no tracing exporter here since this package does not
// emit spans.
type ProviderConfig struct {
	// ServiceName is reported as a resource attribute. Default: "searchcore".
	ServiceName string
}

// InitMeterProvider wires a Prometheus-backed sdkmetric.MeterProvider and
// registers it as the global OTel provider, so a later DefaultMetrics()
// call picks it up. Grounded on glyphoxa's internal/observe/provider.go,
// trimmed to the metrics half since searchcore carries no tracing.
//
// Returns a shutdown func to flush/close the exporter from the caller's
// defer.
func InitMeterProvider(ctx context.Context, cfg ProviderConfig) (shutdown func(context.Context) error, err error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "searchcore"
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
	)

	promExp, err := promexporter.New()
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}
