package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/metrics"
)

// LoggingMiddleware logs one line per request and records request metrics
// under the matched route pattern.
type LoggingMiddleware struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	quiet   map[string]bool
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// NewLoggingMiddleware logs successful requests to quietPaths at debug
// level. With no quietPaths, /health is the only quiet path.
func NewLoggingMiddleware(logger *zap.Logger, m *metrics.Metrics, quietPaths ...string) *LoggingMiddleware {
	if len(quietPaths) == 0 {
		quietPaths = []string{"/health"}
	}
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		if p != "" {
			quiet[p] = true
		}
	}
	return &LoggingMiddleware{logger: logger, metrics: m, quiet: quiet}
}

func (l *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		l.metrics.RecordHTTPRequest(route, rw.status, duration)

		fields := []zap.Field{
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", rw.status),
			zap.Int("size", rw.size),
			zap.Duration("duration", duration),
			zap.String("remote_addr", r.RemoteAddr),
		}

		switch {
		case rw.status >= 500:
			l.logger.Error("request completed", fields...)
		case rw.status >= 400:
			l.logger.Warn("request completed", fields...)
		case l.quiet[r.URL.Path]:
			l.logger.Debug("request completed", fields...)
		default:
			l.logger.Info("request completed", fields...)
		}
	})
}
