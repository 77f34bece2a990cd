package http

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"tubely/internal/auth"
	tubelyerrors "tubely/internal/errors"
	"tubely/internal/logging"
	"tubely/internal/observability"
)

const userIDContextKey = "tubely.userID"

// TokenVerifier validates a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the authenticated user id on the context.
func AuthMiddleware(verifier TokenVerifier, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.GetBearerToken(c.Request.Header)
		if err != nil {
			writeError(c, logger, tubelyerrors.Unauthorized("Couldn't find JWT", err))
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			writeError(c, logger, tubelyerrors.Unauthorized("Couldn't validate JWT", err))
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the id stored by AuthMiddleware.
func CurrentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDContextKey)
	return userID, userID != ""
}

const requestIDHeader = "X-Request-ID"

// LoggingMiddleware tags the request with an id, echoed in X-Request-ID, and
// logs one line per request.
func LoggingMiddleware(logger logging.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		logging.FromContext(c.Request.Context(), logger).Info(
			"route=%s method=%s status=%d latency_ms=%.2f bytes=%d client=%s",
			route,
			c.Request.Method,
			c.Writer.Status(),
			float64(time.Since(start).Microseconds())/1000.0,
			c.Writer.Size(),
			c.ClientIP(),
		)
	}
}

// ObservabilityMiddleware traces each request and records HTTP metrics.
func ObservabilityMiddleware(obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if obs == nil {
			c.Next()
			return
		}
		start := time.Now()
		ctx, span := obs.Tracer.StartSpan(c.Request.Context(), observability.SpanHTTPServer,
			attribute.String("http.method", c.Request.Method),
		)
		c.Request = c.Request.WithContext(ctx)
		defer span.End()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, c.Errors.String())
		}
		size := int64(c.Writer.Size())
		if size < 0 {
			size = 0
		}
		obs.Metrics.RecordHTTPServerRequest(ctx, c.Request.Method, route, status, time.Since(start), size)
	}
}

// CORSMiddleware allows the configured origins with credentials. Outside
// production every origin is accepted, without credentials.
func CORSMiddleware(environment string, allowedOrigins []string) gin.HandlerFunc {
	isDev := environment != "production"
	if !isDev && len(allowedOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	cfg := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if isDev {
		cfg.AllowOriginFunc = func(string) bool { return true }
		cfg.AllowCredentials = false
	}
	return cors.New(cfg)
}
