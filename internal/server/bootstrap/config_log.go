package bootstrap

import (
	"strings"

	"tubely/internal/config"
	"tubely/internal/logging"
)

// LogServerConfiguration prints a redacted snapshot of the runtime configuration.
func LogServerConfiguration(logger logging.Logger, cfg config.Config) {
	logger = logging.OrNop(logger)

	logger.Info("=== Server Configuration ===")
	if cfg.Source != "" {
		logger.Info("Config file: %s", cfg.Source)
	} else {
		logger.Info("Config file: (none; defaults and environment)")
	}
	logger.Info("Environment: %s", cfg.Server.Environment)
	logger.Info("Listen: %s", cfg.Addr())
	logger.Info("Public base URL: %s", cfg.Server.PublicBaseURL)
	if len(cfg.Server.AllowedOrigins) > 0 {
		logger.Info("Allowed origins: %s", strings.Join(cfg.Server.AllowedOrigins, ", "))
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) != "" {
		logger.Info("JWT secret: (set)")
	} else {
		logger.Warn("JWT secret: (not set)")
	}
	logger.Info("Store: %s", cfg.Store.Provider)
	logger.Info("Blob sink: %s", cfg.Blob.Provider)
	logger.Info("Upload limits: thumbnail=%d bytes video=%d bytes", cfg.Upload.MaxThumbnailBytes, cfg.Upload.MaxVideoBytes)
	if cfg.Server.RateLimit.RequestsPerMinute > 0 {
		logger.Info("Upload rate limit: %d/min (burst %d)", cfg.Server.RateLimit.RequestsPerMinute, cfg.Server.RateLimit.Burst)
	}
	if cfg.Metrics.Enabled {
		logger.Info("Metrics: %s/metrics", cfg.Metrics.Addr)
	}
	if cfg.Tracing.Enabled {
		logger.Info("Tracing: %s (sample rate %.2f)", cfg.Tracing.Exporter, cfg.Tracing.SampleRate)
	}
	logger.Info("============================")
}
