package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/config"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger("debug", format)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zap.DebugLevel))
	}
	l, err := NewLogger("bogus", "json")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
}

func TestRecoveryReturnsJSON500(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := NewRecoveryMiddleware(zap.New(core)).Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	serve(h, req)
	assert.Equal(t, incoming, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	serve(h, req)
	assert.NotEqual(t, "<script>", seen)
}

func TestLoggingLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	lm := NewLoggingMiddleware(zap.New(core), nil)

	status := func(code int) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(code) })
	}

	serve(lm.Handler(status(500)), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	serve(lm.Handler(status(404)), httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	serve(lm.Handler(status(200)), httptest.NewRequest(http.MethodGet, "/health", nil))
	serve(lm.Handler(okHandler), httptest.NewRequest(http.MethodGet, "/api/products", nil))

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.DebugLevel, entries[2].Level)
	assert.Equal(t, zap.InfoLevel, entries[3].Level)
	assert.Equal(t, int64(2), entries[3].ContextMap()["size"])
}

func TestLoggingQuietPaths(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	lm := NewLoggingMiddleware(zap.New(core), nil, "/health", "/internal/prom")

	serve(lm.Handler(okHandler), httptest.NewRequest(http.MethodGet, "/internal/prom", nil))
	serve(lm.Handler(okHandler), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, zap.InfoLevel, entries[1].Level)
}

func TestAuth(t *testing.T) {
	cfg := config.AuthConfig{Enabled: true, MasterKey: "s3cret", SkipPaths: []string{"/health", "/metrics"}}
	h := NewAuthMiddleware(cfg, zap.NewNop()).Handler(okHandler)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing API key"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(AuthHeaderName, "wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(AuthHeaderName, "s3cret")
	assert.Equal(t, http.StatusOK, serve(h, req).Code)

	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/api/products?api_key=s3cret", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	// a skip path does not open up paths that merely share its prefix
	assert.Equal(t, http.StatusUnauthorized, serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestAuthDisabled(t *testing.T) {
	h := NewAuthMiddleware(config.AuthConfig{}, zap.NewNop()).Handler(okHandler)
	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/api/products", nil)).Code)
}

func TestRateLimitPerIP(t *testing.T) {
	rl := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2}, zap.NewNop(), nil)
	h := rl.Handler(okHandler)

	from := func(ip string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		r.RemoteAddr = ip + ":5555"
		return r
	}

	assert.Equal(t, http.StatusOK, serve(h, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(h, from("10.0.0.1")).Code)
	rec := serve(h, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(h, from("10.0.0.2")).Code)

	req := from("10.0.0.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, http.StatusOK, serve(h, req).Code)
}

func TestCleanupIPLimiters(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: true, RPS: 10, Burst: 10}, zap.NewNop(), nil)
	rl.now = func() time.Time { return now }

	rl.limiter("a")
	now = now.Add(30 * time.Minute)
	rl.limiter("b")
	now = now.Add(45 * time.Minute)

	assert.Equal(t, 1, rl.CleanupIPLimiters(time.Hour))
	assert.Len(t, rl.ipLimiters, 1)
	assert.Contains(t, rl.ipLimiters, "b")
}
