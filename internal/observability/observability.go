package observability

import (
	"context"

	"tubely/internal/logging"
)

// Observability bundles the metrics collector and tracer provider.
type Observability struct {
	Metrics *MetricsCollector
	Tracer  *TracerProvider
	config  Config
	logger  logging.Logger
}

// New initializes metrics and tracing. Failures degrade to disabled
// components instead of aborting startup.
func New(config Config, logger logging.Logger) *Observability {
	logger = logging.OrNop(logger)

	metrics, err := NewMetricsCollector(config.Metrics)
	if err != nil {
		logger.Error("Failed to initialize metrics: %v", err)
		metrics, _ = NewMetricsCollector(MetricsConfig{})
	}

	tracer, err := NewTracerProvider(config.Tracing)
	if err != nil {
		logger.Error("Failed to initialize tracing: %v", err)
		tracer = &TracerProvider{}
	}

	logger.Info("Observability initialized (metrics=%t tracing=%t)", config.Metrics.Enabled, config.Tracing.Enabled)
	return &Observability{Metrics: metrics, Tracer: tracer, config: config, logger: logger}
}

// Shutdown flushes metrics and tracing.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	if err := o.Metrics.Shutdown(ctx); err != nil {
		o.logger.Error("Failed to shutdown metrics: %v", err)
	}
	if err := o.Tracer.Shutdown(ctx); err != nil {
		o.logger.Error("Failed to shutdown tracing: %v", err)
	}
	return nil
}

// Config returns the configuration the instance was built from.
func (o *Observability) Config() Config {
	return o.config
}
