package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"tubely/internal/auth"
	"tubely/internal/blob"
	"tubely/internal/config"
	"tubely/internal/logging"
	"tubely/internal/observability"
	serverHTTP "tubely/internal/server/http"
	"tubely/internal/upload"
	"tubely/internal/videos"
)

const defaultShutdownTimeout = 15 * time.Second

// Server owns every long-lived component of the API process.
type Server struct {
	cfg      config.Config
	logger   logging.Logger
	obs      *observability.Observability
	store    videos.Store
	sink     blob.Sink
	pipeline *upload.Pipeline
	router   *gin.Engine
	cleanups []func()
}

// Build validates cfg and wires the store, sink, pipeline, and router.
// Call Close when done, even if Run is never called.
func Build(ctx context.Context, cfg config.Config, logger logging.Logger) (*Server, error) {
	logger = logging.OrNop(logger)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	LogServerConfiguration(logger, cfg)

	s := &Server{cfg: cfg, logger: logger}
	s.obs = observability.New(cfg.Observability(), logging.NewComponentLogger("Observability"))
	s.cleanups = append(s.cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.obs.Shutdown(ctx); err != nil {
			logger.Warn("Observability shutdown error: %v", err)
		}
	})

	store, closeStore, err := BuildVideoStore(ctx, cfg.Store, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.store = store
	s.cleanups = append(s.cleanups, closeStore)

	sink, servesAssets, err := BuildSink(ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	if cfg.Metrics.Enabled {
		sink = instrumentSink(sink, s.obs.Metrics.Registry(), logger)
	}
	s.sink = sink

	s.pipeline, err = upload.NewPipeline(upload.Config{
		Videos: store,
		Sink:   sink,
		Limits: upload.Limits{
			MaxThumbnailBytes: cfg.Upload.MaxThumbnailBytes,
			MaxVideoBytes:     cfg.Upload.MaxVideoBytes,
		},
		ScratchDir: cfg.Blob.ScratchDir,
		Logger:     logging.NewComponentLogger("Upload"),
		Tracer:     s.obs.Tracer.Tracer(),
		Metrics:    s.obs.Metrics,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("build upload pipeline: %w", err)
	}

	s.router = serverHTTP.NewRouter(
		serverHTTP.RouterDeps{
			Pipeline:      s.pipeline,
			Videos:        store,
			Sink:          sink,
			Tokens:        auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
			Observability: s.obs,
			Logger:        logging.NewComponentLogger("HTTP"),
		},
		serverHTTP.RouterConfig{
			Environment:    cfg.Server.Environment,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RateLimit: serverHTTP.RateLimitConfig{
				RequestsPerMinute: cfg.Server.RateLimit.RequestsPerMinute,
				Burst:             cfg.Server.RateLimit.Burst,
			},
			MultipartMemoryBytes: cfg.Server.MultipartMemoryBytes,
			ServeAssets:          servesAssets,
		},
	)
	return s, nil
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Pipeline returns the upload pipeline.
func (s *Server) Pipeline() *upload.Pipeline {
	return s.pipeline
}

// Run listens on the configured addresses and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	apiListener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}
	var metricsListener net.Listener
	if s.cfg.Metrics.Enabled && s.cfg.Metrics.Addr != "" {
		metricsListener, err = net.Listen("tcp", s.cfg.Metrics.Addr)
		if err != nil {
			_ = apiListener.Close()
			return fmt.Errorf("listen on %s: %w", s.cfg.Metrics.Addr, err)
		}
	}
	return s.Serve(ctx, apiListener, metricsListener)
}

// Serve runs the API server on apiListener and, when metricsListener is not
// nil, the Prometheus endpoint on it. Both are shut down gracefully once ctx
// is done or either server fails.
func (s *Server) Serve(ctx context.Context, apiListener, metricsListener net.Listener) error {
	servers := map[string]*http.Server{
		"api": {
			Handler:           s.router,
			ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
		},
	}
	listeners := map[string]net.Listener{"api": apiListener}
	if metricsListener != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.obs.Metrics.Handler())
		servers["metrics"] = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		listeners["metrics"] = metricsListener
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, srv := range servers {
		ln := listeners[name]
		g.Go(func() error {
			s.logger.Info("%s server listening on %s", name, ln.Addr())
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", name, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server...")
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var errs []error
		for name, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s server: %w", name, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}

// Close releases the store and flushes telemetry in reverse build order.
func (s *Server) Close() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}
