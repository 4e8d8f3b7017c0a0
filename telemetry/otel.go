package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// Global telemetry handles.
var (
	// Meter for metrics
	Meter = otel.Meter("github.com/mkarlsen/orgscan")

	// PrometheusRegistry for Prometheus scraping in serve mode. The OTEL
	// exporter registers itself with this registry.
	PrometheusRegistry *promclient.Registry
)

// Config for OTEL initialization.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// InitOTEL initializes the OpenTelemetry metric provider with a
// Prometheus reader. Returns a shutdown function and the run metrics.
func InitOTEL(_ context.Context, cfg Config) (shutdown func(context.Context) error, metrics *RunMetrics, err error) {
	cfg = applyConfigDefaults(cfg)

	res, err := createOTELResource(cfg)
	if err != nil {
		return nil, nil, err
	}

	registry := promclient.NewRegistry()
	PrometheusRegistry = registry

	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)
	Meter = provider.Meter("github.com/mkarlsen/orgscan")

	metrics, err = InitRunMetrics(Meter)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return provider.Shutdown, metrics, nil
}

// NoopMetrics returns metrics backed by the global meter without
// installing a provider, for one-shot runs that do not expose /metrics.
func NoopMetrics() (*RunMetrics, error) {
	return InitRunMetrics(Meter)
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "orgscan"
	}
	if cfg.Environment == "" {
		cfg.Environment = "production"
	}
	return cfg
}

func createOTELResource(cfg Config) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
