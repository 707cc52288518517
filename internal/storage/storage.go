package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// Tables read by the dashboard.
const (
	TableDailySummary      = "daily_summary"
	TableAdCreatives       = "ad_creatives"
	TableUnattributedLeads = "unattributed_mql_leads"
)

// Store reads the synced marketing tables. Dates are YYYY-MM-DD and ranges
// are inclusive on both ends.
type Store interface {
	// DailySummaries returns a product's daily rows, oldest first.
	DailySummaries(ctx context.Context, product, start, end string) ([]models.DailySummary, error)
	// LatestDailySummaryDate returns the newest date with a daily row, or "".
	LatestDailySummaryDate(ctx context.Context, product string) (string, error)
	// AdCreatives returns a product's per-day creative rows, highest spend first.
	AdCreatives(ctx context.Context, product, start, end string) ([]models.AdCreative, error)
	// UnattributedLeads returns sheet MQLs that matched no ad.
	UnattributedLeads(ctx context.Context, product, start, end string) ([]models.UnattributedLead, error)
}

// =============================================
// IN-MEMORY STORE
// =============================================

// InMemoryStore keeps rows in memory. It backs development and tests.
type InMemoryStore struct {
	mu        sync.RWMutex
	daily     []models.DailySummary
	creatives []models.AdCreative
	leads     []leadRow
}

type leadRow struct {
	product string
	lead    models.UnattributedLead
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AddDailySummaries appends daily rows.
func (s *InMemoryStore) AddDailySummaries(rows ...models.DailySummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daily = append(s.daily, rows...)
}

// AddAdCreatives appends creative rows.
func (s *InMemoryStore) AddAdCreatives(rows ...models.AdCreative) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creatives = append(s.creatives, rows...)
}

// AddUnattributedLeads appends unattributed leads of a product.
func (s *InMemoryStore) AddUnattributedLeads(product string, leads ...models.UnattributedLead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range leads {
		s.leads = append(s.leads, leadRow{product: product, lead: l})
	}
}

// Fixtures is the JSON layout LoadFixtures reads. Lead rows use the same
// loose column names the hosted table has.
type Fixtures struct {
	DailySummary      []models.DailySummary `json:"daily_summary"`
	AdCreatives       []models.AdCreative   `json:"ad_creatives"`
	UnattributedLeads []map[string]any      `json:"unattributed_mql_leads"`
}

// LoadFixtures seeds the store from a JSON document.
func (s *InMemoryStore) LoadFixtures(r io.Reader) error {
	var f Fixtures
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return fmt.Errorf("failed to decode fixtures: %w", err)
	}
	s.AddDailySummaries(f.DailySummary...)
	s.AddAdCreatives(f.AdCreatives...)
	for _, row := range f.UnattributedLeads {
		s.AddUnattributedLeads(stringField(row, "product_name"), LeadFromRow(row))
	}
	return nil
}

func inRange(date, start, end string) bool {
	d := models.DayOf(date)
	return d >= start && d <= end
}

func (s *InMemoryStore) DailySummaries(_ context.Context, product, start, end string) ([]models.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.DailySummary{}
	for _, d := range s.daily {
		if d.ProductName == product && inRange(d.Date, start, end) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day() < out[j].Day() })
	return out, nil
}

func (s *InMemoryStore) LatestDailySummaryDate(_ context.Context, product string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := ""
	for _, d := range s.daily {
		if d.ProductName == product && d.Day() > latest {
			latest = d.Day()
		}
	}
	return latest, nil
}

func (s *InMemoryStore) AdCreatives(_ context.Context, product, start, end string) ([]models.AdCreative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.AdCreative{}
	for _, c := range s.creatives {
		if c.ProductName == product && inRange(c.Date, start, end) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Spend > out[j].Spend })
	return out, nil
}

func (s *InMemoryStore) UnattributedLeads(_ context.Context, product, start, end string) ([]models.UnattributedLead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.UnattributedLead{}
	for _, l := range s.leads {
		if l.product == product && inRange(l.lead.Date, start, end) {
			out = append(out, l.lead)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*SupabaseStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*ClickHouseStore)(nil)
	_ Store = (*CachedStore)(nil)
	_ Store = (*InstrumentedStore)(nil)
)
