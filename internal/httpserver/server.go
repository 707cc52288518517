package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/analytics"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/catalog"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/config"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/dashboard"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/database"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/daterange"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/metrics"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/middleware"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	Refresher *dashboard.Refresher
	Resolver  *daterange.Resolver
	// Checkers are pinged by /health.
	Checkers    []database.Checker
	RateLimiter *middleware.RateLimitMiddleware
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// Server wraps the dashboard HTTP handlers.
type Server struct {
	refresher *dashboard.Refresher
	resolver  *daterange.Resolver
	checkers  []database.Checker
	logger    *zap.Logger
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	s := &Server{
		refresher: deps.Refresher,
		resolver:  deps.Resolver,
		checkers:  deps.Checkers,
		logger:    deps.Logger,
	}

	rl := deps.RateLimiter
	if rl == nil {
		rl = middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger, deps.Metrics)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.NewRecoveryMiddleware(deps.Logger).Handler,
		middleware.RequestID,
		middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics, "/health", deps.Config.Metrics.Path).Handler,
		rl.Handler,
		middleware.NewAuthMiddleware(deps.Config.Auth, deps.Logger).Handler,
	)

	r.Get("/health", s.handleHealth)
	if deps.Config.Metrics.Enabled && deps.Metrics != nil {
		r.Handle(deps.Config.Metrics.Path, deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.handleProducts)
		r.Get("/date-range", s.handleDateRange)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/creatives", s.handleCreatives)
		r.Get("/daily", s.handleDaily)
		r.Get("/unattributed-leads", s.handleUnattributedLeads)
		r.Post("/refresh", s.handleRefresh)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	checks := make(map[string]string, len(s.checkers))
	for _, c := range s.checkers {
		if err := c.Health(ctx); err != nil {
			s.logger.Warn("health check failed", zap.String("dependency", c.Name()), zap.Error(err))
			checks[c.Name()] = err.Error()
			status = "degraded"
			continue
		}
		checks[c.Name()] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	s.jsonStatus(w, code, map[string]any{"status": status, "checks": checks})
}

// ---- Products & Ranges ----

type productResponse struct {
	catalog.Product
	DefaultRange daterange.Range `json:"default_range"`
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products := catalog.All()
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{Product: p, DefaultRange: s.resolver.DefaultRange(p.ID)})
	}
	s.jsonResponse(w, out)
}

type dateRangeResponse struct {
	Product            string             `json:"product"`
	Preset             daterange.Preset   `json:"preset,omitempty"`
	Range              daterange.Range    `json:"range"`
	Today              string             `json:"today"`
	IncludesPartialDay bool               `json:"includes_partial_day"`
	Presets            []daterange.Preset `json:"presets"`
}

func (s *Server) handleDateRange(w http.ResponseWriter, r *http.Request) {
	q, ok := s.parseQuery(w, r)
	if !ok {
		return
	}
	rg := q.Range
	if q.Preset != "" {
		rg = s.resolver.Resolve(q.Preset, q.ProductID)
	}
	s.jsonResponse(w, dateRangeResponse{
		Product:            q.ProductID,
		Preset:             q.Preset,
		Range:              rg,
		Today:              s.resolver.Today(),
		IncludesPartialDay: s.resolver.IncludesPartialDay(rg),
		Presets:            daterange.Presets,
	})
}

// ---- Dashboard ----

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	lb, ok := s.rank(w, r, snap)
	if !ok {
		return
	}
	out := *snap
	out.Leaderboard = lb
	s.jsonResponse(w, &out)
}

func (s *Server) handleCreatives(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	lb, ok := s.rank(w, r, snap)
	if !ok {
		return
	}
	s.jsonResponse(w, lb)
}

type dailyResponse struct {
	Product                string                `json:"product"`
	Range                  daterange.Range       `json:"range"`
	UsingCreativesFallback bool                  `json:"using_creatives_fallback"`
	LatestAvailableDate    string                `json:"latest_available_date,omitempty"`
	Days                   []models.DailySummary `json:"days"`
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	resp := dailyResponse{
		Product:                snap.Product.ID,
		Range:                  snap.Range,
		UsingCreativesFallback: snap.UsingCreativesFallback,
		LatestAvailableDate:    snap.LatestAvailableDate,
		Days:                   []models.DailySummary{},
	}
	if snap.Metrics != nil {
		resp.Days = snap.Metrics.DailyData
	}
	s.jsonResponse(w, resp)
}

func (s *Server) handleUnattributedLeads(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, map[string]any{
		"product": snap.Product.ID,
		"range":   snap.Range,
		"leads":   snap.Unassigned,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product")
	if productID != "" {
		if _, err := catalog.Lookup(productID); err != nil {
			s.errorResponse(w, err.Error(), http.StatusNotFound)
			return
		}
	}

	if err := s.refresher.Refresh(r.Context(), productID, "manual"); err != nil {
		s.logger.Error("manual refresh failed", zap.String("product", productID), zap.Error(err))
		s.errorResponse(w, "refresh failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	s.jsonResponse(w, map[string]any{"status": "refreshed", "tracked": s.refresher.Tracked()})
}

// ---- Query Parsing ----

// parseQuery reads product and range parameters. start and end together
// select an explicit range; otherwise preset, then the product's default.
func (s *Server) parseQuery(w http.ResponseWriter, r *http.Request) (dashboard.Query, bool) {
	v := r.URL.Query()

	p, err := catalog.Lookup(v.Get("product"))
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusNotFound)
		return dashboard.Query{}, false
	}
	q := dashboard.Query{ProductID: p.ID}

	start, end := v.Get("start"), v.Get("end")
	switch {
	case start != "" || end != "":
		rg, err := daterange.Explicit(start, end)
		if err != nil {
			s.errorResponse(w, err.Error(), http.StatusBadRequest)
			return dashboard.Query{}, false
		}
		q.Range = rg
	case v.Get("preset") != "":
		preset, ok := daterange.ParsePreset(v.Get("preset"))
		if !ok {
			s.errorResponse(w, "unknown preset: "+v.Get("preset"), http.StatusBadRequest)
			return dashboard.Query{}, false
		}
		q.Preset = preset
	case p.OpeningStart != "":
		q.Range = s.resolver.DefaultRange(p.ID)
	default:
		q.Preset = daterange.AllTime
	}
	return q, true
}

func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) (*dashboard.Snapshot, bool) {
	q, ok := s.parseQuery(w, r)
	if !ok {
		return nil, false
	}
	snap, err := s.refresher.Get(r.Context(), q)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownProduct) {
			s.errorResponse(w, err.Error(), http.StatusNotFound)
			return nil, false
		}
		s.logger.Error("failed to load dashboard", zap.String("product", q.ProductID), zap.Error(err))
		s.errorResponse(w, "failed to load dashboard", http.StatusInternalServerError)
		return nil, false
	}
	return snap, true
}

// rank applies view, sort and limit parameters to the snapshot's leaderboard.
func (s *Server) rank(w http.ResponseWriter, r *http.Request, snap *dashboard.Snapshot) (analytics.Leaderboard, bool) {
	v := r.URL.Query()
	if v.Get("view") == "" && v.Get("sort") == "" && v.Get("limit") == "" {
		return snap.Leaderboard, true
	}

	var view analytics.LeadsView
	if raw := v.Get("view"); raw != "" {
		parsed, ok := analytics.ParseLeadsView(raw)
		if !ok {
			s.errorResponse(w, "unknown view: "+raw, http.StatusBadRequest)
			return analytics.Leaderboard{}, false
		}
		view = parsed
	}

	var key analytics.SortKey
	if raw := v.Get("sort"); raw != "" {
		parsed, ok := analytics.ParseSortKey(raw)
		if !ok {
			s.errorResponse(w, "unknown sort: "+raw, http.StatusBadRequest)
			return analytics.Leaderboard{}, false
		}
		key = parsed
	}

	limit := 0
	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.errorResponse(w, "limit must be a positive integer", http.StatusBadRequest)
			return analytics.Leaderboard{}, false
		}
		limit = n
	}

	return snap.Rank(view, key, limit), true
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	s.jsonStatus(w, http.StatusOK, data)
}

func (s *Server) jsonStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
