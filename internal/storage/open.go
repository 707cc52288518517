package storage

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/config"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/database"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/metrics"
)

// Open connects the configured backend and wraps it with query metrics. It
// returns the dependencies /health should ping and a func releasing them.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (Store, []database.Checker, func(), error) {
	var (
		store    Store
		checkers []database.Checker
		closeFn  = func() {}
	)

	switch cfg.Store.Backend {
	case config.BackendSupabase:
		s := NewSupabaseStore(cfg.Supabase, logger)
		store = s
		checkers = append(checkers, s)

	case config.BackendPostgres:
		db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		store = NewPostgresStore(db.Pool)
		checkers = append(checkers, db)
		closeFn = db.Close

	case config.BackendClickHouse:
		db, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		store = NewClickHouseStore(db.DB)
		checkers = append(checkers, db)
		closeFn = func() { _ = db.Close() }

	case config.BackendMemory:
		mem := NewInMemoryStore()
		if path := cfg.Store.FixturesPath; path != "" {
			f, err := os.Open(path)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("failed to open fixtures: %w", err)
			}
			defer f.Close()
			if err := mem.LoadFixtures(f); err != nil {
				return nil, nil, nil, err
			}
			logger.Info("loaded fixtures", zap.String("path", path))
		}
		store = mem

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return NewInstrumentedStore(store, cfg.Store.Backend, m), checkers, closeFn, nil
}
