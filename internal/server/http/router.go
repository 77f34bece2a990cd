package http

import (
	"github.com/gin-gonic/gin"

	"tubely/internal/blob"
	"tubely/internal/logging"
	"tubely/internal/observability"
	"tubely/internal/upload"
	"tubely/internal/videos"
)

// RouterConfig carries the HTTP-level settings.
type RouterConfig struct {
	Environment          string
	AllowedOrigins       []string
	RateLimit            RateLimitConfig
	MultipartMemoryBytes int64
	// ServeAssets mounts GET /assets/*key for sinks that have no public
	// endpoint of their own.
	ServeAssets bool
}

// RouterDeps are the collaborators behind the routes.
type RouterDeps struct {
	Pipeline      *upload.Pipeline
	Videos        videos.Store
	Sink          blob.Sink
	Tokens        TokenVerifier
	Observability *observability.Observability
	Logger        logging.Logger
}

// NewRouter builds the gin engine with every route.
func NewRouter(deps RouterDeps, cfg RouterConfig) *gin.Engine {
	logger := logging.OrNop(deps.Logger)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggingMiddleware(logger))
	engine.Use(ObservabilityMiddleware(deps.Observability))
	engine.Use(CORSMiddleware(cfg.Environment, cfg.AllowedOrigins))
	if cfg.MultipartMemoryBytes > 0 {
		engine.MaxMultipartMemory = cfg.MultipartMemoryBytes
	}

	uploads := NewUploadHandler(deps.Pipeline, deps.Videos, deps.Sink, cfg.MultipartMemoryBytes, logger)
	videoHandler := NewVideoHandler(deps.Videos, logger)

	engine.GET("/health", HandleHealth)
	if cfg.ServeAssets {
		engine.GET(blob.AssetsRoute+"*key", NewAssetHandler(deps.Sink, logger).HandleGetAsset)
	}

	api := engine.Group("/api")
	api.GET("/thumbnails/:videoID", uploads.HandleGetThumbnail)

	authed := api.Group("")
	authed.Use(AuthMiddleware(deps.Tokens, logger))
	authed.GET("/videos", videoHandler.HandleListVideos)
	authed.POST("/videos", videoHandler.HandleCreateVideo)
	authed.GET("/videos/:videoID", videoHandler.HandleGetVideo)
	authed.DELETE("/videos/:videoID", videoHandler.HandleDeleteVideo)

	limited := authed.Group("")
	limited.Use(RateLimitMiddleware(cfg.RateLimit))
	limited.POST("/thumbnails/:videoID", uploads.HandleUploadThumbnail)
	limited.POST("/videos/:videoID", uploads.HandleUploadVideo)

	return engine
}
