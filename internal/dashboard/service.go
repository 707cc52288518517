// Package dashboard assembles everything one dashboard screen shows for a
// product and date range, and keeps recently viewed screens fresh.
package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/analytics"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/catalog"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/daterange"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/metrics"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/storage"
)

// Snapshot is the computed state of one dashboard screen.
type Snapshot struct {
	Product catalog.Product `json:"product"`
	Range   daterange.Range `json:"range"`

	// Metrics is nil when neither daily rows nor creatives exist.
	Metrics                *analytics.AggregatedMetrics `json:"metrics"`
	UsingCreativesFallback bool                         `json:"using_creatives_fallback"`
	// LatestAvailableDate is set only when Metrics is nil.
	LatestAvailableDate string `json:"latest_available_date,omitempty"`
	IncludesPartialDay  bool   `json:"includes_partial_day"`

	Funnel      []analytics.FunnelStep      `json:"funnel"`
	Cards       []analytics.Card            `json:"cards"`
	SheetPanel  *analytics.SheetPanel       `json:"sheet_panel"`
	Creatives   []models.AggregatedCreative `json:"-"`
	Leaderboard analytics.Leaderboard       `json:"leaderboard"`
	Unassigned  []models.UnattributedLead   `json:"unattributed_leads"`
	Warnings    []string                    `json:"warnings,omitempty"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	overrides catalog.Overrides
	top       int
}

// Totals returns the metric totals, zero when there are no metrics.
func (s *Snapshot) Totals() analytics.Totals {
	if s.Metrics == nil {
		return analytics.Totals{}
	}
	return s.Metrics.Totals
}

// Rank rebuilds the leaderboard with another view, sort or size. Zero
// values keep the defaults.
func (s *Snapshot) Rank(view analytics.LeadsView, sort analytics.SortKey, top int) analytics.Leaderboard {
	if top <= 0 {
		top = s.top
	}
	return analytics.BuildLeaderboard(s.Product, s.Totals(), s.Creatives, analytics.LeaderboardOptions{
		View:      view,
		Sort:      sort,
		Top:       top,
		Overrides: s.overrides,
	})
}

// Service loads snapshots from a store.
type Service struct {
	store     storage.Store
	resolver  *daterange.Resolver
	overrides catalog.Overrides
	top       int
	metrics   *metrics.Metrics
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// DefaultLoadTimeout bounds the store reads of one Load.
const DefaultLoadTimeout = 20 * time.Second

// Option customizes a Service.
type Option func(*Service)

// WithOverrides sets creative name and link overrides.
func WithOverrides(o catalog.Overrides) Option {
	return func(s *Service) { s.overrides = o }
}

// WithLeaderboardTop sets how many creatives the leaderboard lists.
func WithLeaderboardTop(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.top = n
		}
	}
}

// WithMetrics records fallback usage.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLoadTimeout bounds the store reads of one Load. Reads still running
// when it expires fail and are reported in Warnings.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithNow replaces the clock stamping UpdatedAt.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store storage.Store, resolver *daterange.Resolver, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		resolver:  resolver,
		overrides: catalog.DefaultOverrides(),
		top:       analytics.DefaultLeaderboardTop,
		timeout:   DefaultLoadTimeout,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolver returns the date range resolver the service uses.
func (s *Service) Resolver() *daterange.Resolver {
	return s.resolver
}

// Load computes a snapshot. The only error is an unknown product: store
// failures are logged, recorded in Warnings and leave the affected part
// empty.
func (s *Service) Load(ctx context.Context, productID string, rg daterange.Range) (*Snapshot, error) {
	p, err := catalog.Lookup(productID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Product:            p,
		Range:              rg,
		IncludesPartialDay: s.resolver.IncludesPartialDay(rg),
		overrides:          s.overrides,
		top:                s.top,
	}
	log := s.logger.With(zap.String("product", p.ID), zap.String("range", rg.String()))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rawCreatives, err := s.store.AdCreatives(ctx, p.ID, rg.Start, rg.End)
	if err != nil {
		log.Error("failed to load ad creatives", zap.Error(err))
		snap.Warnings = append(snap.Warnings, "ad_creatives: "+err.Error())
		rawCreatives = nil
	}
	snap.Creatives = analytics.AggregateCreatives(rawCreatives)

	days, err := s.store.DailySummaries(ctx, p.ID, rg.Start, rg.End)
	if err != nil {
		log.Error("failed to load daily summary", zap.Error(err))
		snap.Warnings = append(snap.Warnings, "daily_summary: "+err.Error())
		days = nil
	}

	switch {
	case len(days) > 0:
		snap.Metrics = analytics.AggregateMetrics(days)
	case len(rawCreatives) > 0:
		snap.Metrics = analytics.FallbackFromCreatives(p.ID, rawCreatives)
		snap.UsingCreativesFallback = snap.Metrics != nil
		if snap.UsingCreativesFallback {
			s.metrics.RecordFallback(p.ID)
			log.Info("daily summary empty, using creatives fallback", zap.Int("creative_rows", len(rawCreatives)))
		}
	}

	if snap.Metrics == nil {
		latest, err := s.store.LatestDailySummaryDate(ctx, p.ID)
		if err != nil {
			log.Warn("failed to load latest daily summary date", zap.Error(err))
			snap.Warnings = append(snap.Warnings, "latest date: "+err.Error())
		}
		snap.LatestAvailableDate = latest
	}

	snap.Unassigned = []models.UnattributedLead{}
	if !p.IsSales() || p.ShowMQLInSales {
		leads, err := s.store.UnattributedLeads(ctx, p.ID, rg.Start, rg.End)
		if err != nil {
			log.Warn("failed to load unattributed leads", zap.Error(err))
			snap.Warnings = append(snap.Warnings, "unattributed leads: "+err.Error())
		} else {
			snap.Unassigned = leads
		}
	}

	snap.Funnel = analytics.Funnel(p, snap.Metrics)
	snap.Cards = analytics.Cards(p, snap.Metrics)
	snap.SheetPanel = analytics.NewSheetPanel(snap.Metrics)
	snap.Leaderboard = snap.Rank("", "", 0)
	snap.UpdatedAt = s.now()

	return snap, nil
}
