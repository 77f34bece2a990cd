package logging

import (
	"context"
	"strings"
)

type requestIDKey struct{}

// ContextWithRequestID stores id on ctx for FromContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored on ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequestID returns a logger that prefixes every line with the request id.
func WithRequestID(logger Logger, requestID string) Logger {
	if IsNil(logger) {
		return Nop()
	}
	if requestID == "" {
		return logger
	}
	if tagged, ok := logger.(*requestIDLogger); ok {
		return &requestIDLogger{logger: tagged.logger, requestID: requestID}
	}
	return &requestIDLogger{logger: logger, requestID: requestID}
}

// FromContext tags logger with the request id found on ctx, if any.
func FromContext(ctx context.Context, logger Logger) Logger {
	return WithRequestID(logger, RequestIDFromContext(ctx))
}

type requestIDLogger struct {
	logger    Logger
	requestID string
}

func (l *requestIDLogger) Debug(format string, args ...any) {
	l.logger.Debug(l.prefix(format), args...)
}

func (l *requestIDLogger) Info(format string, args ...any) {
	l.logger.Info(l.prefix(format), args...)
}

func (l *requestIDLogger) Warn(format string, args ...any) {
	l.logger.Warn(l.prefix(format), args...)
}

func (l *requestIDLogger) Error(format string, args ...any) {
	l.logger.Error(l.prefix(format), args...)
}

func (l *requestIDLogger) prefix(format string) string {
	return "request_id=" + l.requestID + " " + format
}
