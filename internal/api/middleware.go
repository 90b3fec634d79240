package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkgsmith/pkgsmith/internal/logging"
)

// contextKey is used for storing values in request context.
type contextKey string

const correlationIDKey contextKey = "correlation_id"

// CorrelationIDMiddleware adds a correlation ID to each request.
// The ID is generated if not present in the X-Correlation-ID header.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		w.Header().Set("X-Correlation-ID", correlationID)

		ctx := context.WithValue(r.Context(), correlationIDKey, correlationID)
		ctx = logging.WithCorrelationID(ctx, correlationID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLoggingMiddleware logs incoming requests and their duration.
func RequestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		statusCode := wrapped.statusCode

		fields := map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      statusCode,
			"duration_ms": duration.Milliseconds(),
		}
		if correlationID := GetCorrelationID(r.Context()); correlationID != "" {
			fields["correlation_id"] = correlationID
		}

		logger := logging.Default().WithFields(fields)

		switch {
		case statusCode >= 500:
			logger.Error("Request failed: %s %s - %d", r.Method, r.URL.Path, statusCode)
		case statusCode >= 400:
			logger.Warn("Request error: %s %s - %d", r.Method, r.URL.Path, statusCode)
		case isHighFrequencyEndpoint(r.URL.Path):
			logger.Debug("Request completed: %s %s - %d (%dms)", r.Method, r.URL.Path, statusCode, duration.Milliseconds())
		default:
			logger.Info("Request completed: %s %s - %d (%dms)", r.Method, r.URL.Path, statusCode, duration.Milliseconds())
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush passes through to the wrapped writer so SSE streaming keeps
// working behind the logging middleware.
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// isHighFrequencyEndpoint returns true for endpoints that are polled
// frequently and should use debug logging to avoid log spam.
func isHighFrequencyEndpoint(path string) bool {
	return path == "/health" || path == "/events"
}

// GetCorrelationID retrieves the correlation ID from a request context.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// corsMiddleware reflects the request origin for browser-based clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Correlation-ID, Mcp-Session-Id")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ChainMiddleware chains multiple middleware functions together.
// Middleware is applied in the order provided (first middleware wraps
// outermost).
func ChainMiddleware(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
