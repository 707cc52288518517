package storage

import (
	"context"
	"time"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/metrics"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// InstrumentedStore records latency, outcome and row counts of every query.
type InstrumentedStore struct {
	next    Store
	backend string
	metrics *metrics.Metrics
}

func NewInstrumentedStore(next Store, backend string, m *metrics.Metrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend, metrics: m}
}

func (s *InstrumentedStore) observe(table string, start time.Time, rows int, err error) {
	s.metrics.RecordStoreQuery(s.backend, table, rows, err, time.Since(start))
}

func (s *InstrumentedStore) DailySummaries(ctx context.Context, product, start, end string) ([]models.DailySummary, error) {
	t := time.Now()
	rows, err := s.next.DailySummaries(ctx, product, start, end)
	s.observe(TableDailySummary, t, len(rows), err)
	return rows, err
}

func (s *InstrumentedStore) LatestDailySummaryDate(ctx context.Context, product string) (string, error) {
	t := time.Now()
	date, err := s.next.LatestDailySummaryDate(ctx, product)
	n := 0
	if date != "" {
		n = 1
	}
	s.observe(TableDailySummary, t, n, err)
	return date, err
}

func (s *InstrumentedStore) AdCreatives(ctx context.Context, product, start, end string) ([]models.AdCreative, error) {
	t := time.Now()
	rows, err := s.next.AdCreatives(ctx, product, start, end)
	s.observe(TableAdCreatives, t, len(rows), err)
	return rows, err
}

func (s *InstrumentedStore) UnattributedLeads(ctx context.Context, product, start, end string) ([]models.UnattributedLead, error) {
	t := time.Now()
	rows, err := s.next.UnattributedLeads(ctx, product, start, end)
	s.observe(TableUnattributedLeads, t, len(rows), err)
	return rows, err
}
