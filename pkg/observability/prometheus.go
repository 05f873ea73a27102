package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// NewPrometheusMeterProvider returns a MeterProvider whose instruments are
// collected into a fresh Prometheus registry and into any extra readers.
func NewPrometheusMeterProvider(
	res *resource.Resource, extra ...sdkmetric.Reader,
) (*sdkmetric.MeterProvider, *prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(exporter)}
	for _, reader := range extra {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	if res != nil {
		opts = append(opts, sdkmetric.WithResource(res))
	}

	return sdkmetric.NewMeterProvider(opts...), registry, nil
}

// WriteMetricsFile writes the registry in the node-exporter textfile format.
func WriteMetricsFile(registry *prometheus.Registry, path string) error {
	err := prometheus.WriteToTextfile(path, registry)
	if err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}

	return nil
}
