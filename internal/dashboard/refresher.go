package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/daterange"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/metrics"
)

// Query identifies a dashboard screen. A preset query is re-resolved on
// every refresh so "today" follows the calendar; otherwise Range is fixed.
type Query struct {
	ProductID string
	Preset    daterange.Preset
	Range     daterange.Range
}

func (q Query) key() string {
	if q.Preset != "" {
		return q.ProductID + "|" + string(q.Preset)
	}
	return q.ProductID + "|" + q.Range.String()
}

// Loader loads snapshots. *Service implements it.
type Loader interface {
	Load(ctx context.Context, productID string, rg daterange.Range) (*Snapshot, error)
}

// Invalidator drops cached store reads of a product.
type Invalidator interface {
	Invalidate(ctx context.Context, product string) error
}

type tracked struct {
	query      Query
	snapshot   *Snapshot
	lastAccess time.Time
}

// Refresher serves snapshots of recently viewed screens and reloads them on
// a timer.
type Refresher struct {
	loader      Loader
	resolver    *daterange.Resolver
	interval    time.Duration
	maxTracked  int
	invalidator Invalidator
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*tracked
}

// RefresherConfig configures a Refresher.
type RefresherConfig struct {
	Interval   time.Duration
	MaxTracked int
	// Invalidator, when set, is called before a forced refresh.
	Invalidator Invalidator
	Metrics     *metrics.Metrics
}

func NewRefresher(loader Loader, resolver *daterange.Resolver, cfg RefresherConfig, logger *zap.Logger) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.MaxTracked <= 0 {
		cfg.MaxTracked = 64
	}
	return &Refresher{
		loader:      loader,
		resolver:    resolver,
		interval:    cfg.Interval,
		maxTracked:  cfg.MaxTracked,
		invalidator: cfg.Invalidator,
		metrics:     cfg.Metrics,
		logger:      logger,
		now:         time.Now,
		entries:     make(map[string]*tracked),
	}
}

func (r *Refresher) resolve(q Query) daterange.Range {
	if q.Preset != "" {
		return r.resolver.Resolve(q.Preset, q.ProductID)
	}
	return q.Range
}

// Get returns the tracked snapshot of a query, loading and tracking it on
// first use.
func (r *Refresher) Get(ctx context.Context, q Query) (*Snapshot, error) {
	k := q.key()
	rg := r.resolve(q)

	r.mu.Lock()
	if e, ok := r.entries[k]; ok && e.snapshot != nil && e.snapshot.Range == rg {
		e.lastAccess = r.now()
		snap := e.snapshot
		r.mu.Unlock()
		return snap, nil
	}
	r.mu.Unlock()

	snap, err := r.loader.Load(ctx, q.ProductID, rg)
	r.metrics.RecordRefresh("request", err)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[k] = &tracked{query: q, snapshot: snap, lastAccess: r.now()}
	r.evictLocked()
	r.metrics.UpdateTracked(len(r.entries), r.now())
	return snap, nil
}

// evictLocked drops the least recently accessed entries beyond maxTracked.
func (r *Refresher) evictLocked() {
	for len(r.entries) > r.maxTracked {
		var oldestKey string
		var oldest time.Time
		for k, e := range r.entries {
			if oldestKey == "" || e.lastAccess.Before(oldest) {
				oldestKey, oldest = k, e.lastAccess
			}
		}
		delete(r.entries, oldestKey)
	}
}

// Tracked returns the number of tracked screens.
func (r *Refresher) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Refresh reloads every tracked screen of a product, or of all products
// when productID is empty. Failed screens keep their last snapshot; the
// returned error joins every load error.
func (r *Refresher) Refresh(ctx context.Context, productID, trigger string) error {
	if r.invalidator != nil && trigger == "manual" {
		if err := r.invalidator.Invalidate(ctx, productID); err != nil {
			r.logger.Warn("cache invalidation failed", zap.String("product", productID), zap.Error(err))
		}
	}

	r.mu.Lock()
	queries := make([]Query, 0, len(r.entries))
	for _, e := range r.entries {
		if productID == "" || e.query.ProductID == productID {
			queries = append(queries, e.query)
		}
	}
	r.mu.Unlock()

	var errs []error
	for _, q := range queries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		snap, err := r.loader.Load(ctx, q.ProductID, r.resolve(q))
		r.metrics.RecordRefresh(trigger, err)
		if err != nil {
			r.logger.Error("refresh failed", zap.String("product", q.ProductID), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		r.mu.Lock()
		if e, ok := r.entries[q.key()]; ok {
			e.snapshot = snap
		}
		r.mu.Unlock()
	}

	r.metrics.UpdateTracked(r.Tracked(), r.now())
	r.logger.Debug("refresh completed",
		zap.String("trigger", trigger),
		zap.String("product", productID),
		zap.Int("screens", len(queries)),
	)
	return errors.Join(errs...)
}

// Run refreshes all tracked screens every interval until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("refresher started", zap.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopped")
			return
		case <-ticker.C:
			_ = r.Refresh(ctx, "", "timer")
		}
	}
}
