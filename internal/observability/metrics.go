package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig configures the metrics collector
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// MetricsCollector records HTTP and upload metrics through an OpenTelemetry
// meter exported to a dedicated Prometheus registry.
type MetricsCollector struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider

	httpRequests metric.Int64Counter
	httpLatency  metric.Float64Histogram
	httpBytes    metric.Int64Counter

	uploads        metric.Int64Counter
	uploadBytes    metric.Int64Counter
	orphanedAssets metric.Int64Counter
}

// NewMetricsCollector builds the collector. A disabled config yields a
// collector whose Record methods do nothing.
func NewMetricsCollector(config MetricsConfig) (*MetricsCollector, error) {
	registry := prometheus.NewRegistry()
	if !config.Enabled {
		return &MetricsCollector{registry: registry}, nil
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("tubely")

	collector := &MetricsCollector{registry: registry, provider: provider}

	if collector.httpRequests, err = meter.Int64Counter(
		"tubely.http.requests",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_requests counter: %w", err)
	}
	if collector.httpLatency, err = meter.Float64Histogram(
		"tubely.http.latency",
		metric.WithDescription("HTTP request latency in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_latency histogram: %w", err)
	}
	if collector.httpBytes, err = meter.Int64Counter(
		"tubely.http.response_size",
		metric.WithDescription("Bytes written in HTTP responses"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_response_size counter: %w", err)
	}
	if collector.uploads, err = meter.Int64Counter(
		"tubely.uploads",
		metric.WithDescription("Upload attempts by asset kind and outcome"),
		metric.WithUnit("{upload}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create uploads counter: %w", err)
	}
	if collector.uploadBytes, err = meter.Int64Counter(
		"tubely.upload.size",
		metric.WithDescription("Bytes accepted by the upload pipeline"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create upload_size counter: %w", err)
	}
	if collector.orphanedAssets, err = meter.Int64Counter(
		"tubely.orphaned_assets",
		metric.WithDescription("Blobs persisted whose video record could not be updated"),
		metric.WithUnit("{asset}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create orphaned_assets counter: %w", err)
	}

	return collector, nil
}

// Registry exposes the registry so other components (blob metrics) can share it.
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Shutdown flushes the meter provider.
func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

// RecordHTTPServerRequest records one served request.
func (m *MetricsCollector) RecordHTTPServerRequest(ctx context.Context, method, route string, status int, latency time.Duration, responseBytes int64) {
	if m == nil || m.httpRequests == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpLatency.Record(ctx, latency.Seconds(), attrs)
	if responseBytes > 0 {
		m.httpBytes.Add(ctx, responseBytes, attrs)
	}
}

// RecordUpload records the outcome of one pipeline run.
func (m *MetricsCollector) RecordUpload(ctx context.Context, kind, outcome string, sizeBytes int64) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
	if outcome == "stored" && sizeBytes > 0 {
		m.uploadBytes.Add(ctx, sizeBytes, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// RecordOrphanedAsset counts a blob left behind by a failed record update.
func (m *MetricsCollector) RecordOrphanedAsset(ctx context.Context, kind string) {
	if m == nil || m.orphanedAssets == nil {
		return
	}
	m.orphanedAssets.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
