package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, ":9090", config.Metrics.Addr)
	assert.False(t, config.Tracing.Enabled)
	assert.Equal(t, "otlp", config.Tracing.Exporter)
	assert.Equal(t, 1.0, config.Tracing.SampleRate)
	assert.Equal(t, "tubely", config.Tracing.ServiceName)
}

func TestNewTracerProviderDisabledIsNoop(t *testing.T) {
	tp, err := NewTracerProvider(TracingConfig{Enabled: false})
	require.NoError(t, err)

	_, span := tp.StartSpan(context.Background(), SpanUploadStore, UploadAttrs("v1", "u1", "thumbnail")...)
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProviderRejectsUnknownExporter(t *testing.T) {
	_, err := NewTracerProvider(TracingConfig{Enabled: true, Exporter: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exporter")
}

func TestZeroTracerProviderIsUsable(t *testing.T) {
	var tp *TracerProvider
	_, span := tp.StartSpan(context.Background(), SpanUploadLink)
	span.End()
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestMetricsCollectorExportsUploadMetrics(t *testing.T) {
	collector, err := NewMetricsCollector(MetricsConfig{Enabled: true})
	require.NoError(t, err)
	defer collector.Shutdown(context.Background())

	ctx := context.Background()
	collector.RecordHTTPServerRequest(ctx, http.MethodPost, "/api/thumbnails/:videoID", http.StatusOK, 15*time.Millisecond, 120)
	collector.RecordUpload(ctx, "thumbnail", "stored", 2048)
	collector.RecordOrphanedAsset(ctx, "video")

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "tubely_orphaned_assets"), "orphan counter missing")
	assert.True(t, strings.Contains(body, "tubely_uploads"), "upload counter missing")
	assert.True(t, strings.Contains(body, "tubely_http_requests"), "http counter missing")
	assert.Contains(t, body, `kind="thumbnail"`)
}

func TestMetricsCollectorDisabledIsNoop(t *testing.T) {
	collector, err := NewMetricsCollector(MetricsConfig{Enabled: false})
	require.NoError(t, err)

	collector.RecordUpload(context.Background(), "video", "stored", 10)
	collector.RecordOrphanedAsset(context.Background(), "video")

	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}
