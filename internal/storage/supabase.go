package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/config"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// HTTPClient is the part of *http.Client the Supabase store needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for non-2xx PostgREST responses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// =============================================
// SUPABASE (POSTGREST) STORE
// =============================================

// SupabaseStore reads the tables through the project's PostgREST endpoint.
type SupabaseStore struct {
	baseURL    string
	key        string
	client     HTTPClient
	pageSize   int
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// SupabaseOption customizes a SupabaseStore.
type SupabaseOption func(*SupabaseStore)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(c HTTPClient) SupabaseOption {
	return func(s *SupabaseStore) { s.client = c }
}

// WithBackoff sets the base delay between retries.
func WithBackoff(d time.Duration) SupabaseOption {
	return func(s *SupabaseStore) { s.backoff = d }
}

func NewSupabaseStore(cfg config.SupabaseConfig, logger *zap.Logger, opts ...SupabaseOption) *SupabaseStore {
	s := &SupabaseStore{
		baseURL:    cfg.URL,
		key:        cfg.Key,
		client:     &http.Client{Timeout: cfg.HTTPTimeout},
		pageSize:   cfg.PageSize,
		maxRetries: cfg.MaxRetries,
		backoff:    100 * time.Millisecond,
		logger:     logger,
	}
	if s.pageSize <= 0 {
		s.pageSize = 1000
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func rangeQuery(product, start, end, order string) url.Values {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("product_name", "eq."+product)
	q.Add("date", "gte."+start)
	q.Add("date", "lte."+end)
	q.Set("order", order)
	return q
}

func (s *SupabaseStore) DailySummaries(ctx context.Context, product, start, end string) ([]models.DailySummary, error) {
	rows, err := fetchAll[models.DailySummary](ctx, s, TableDailySummary, rangeQuery(product, start, end, "date.asc"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily summary: %w", err)
	}
	return rows, nil
}

func (s *SupabaseStore) LatestDailySummaryDate(ctx context.Context, product string) (string, error) {
	q := url.Values{}
	q.Set("select", "date")
	q.Set("product_name", "eq."+product)
	q.Set("order", "date.desc")
	q.Set("limit", "1")

	var rows []struct {
		Date string `json:"date"`
	}
	if err := s.get(ctx, TableDailySummary, q, &rows); err != nil {
		return "", fmt.Errorf("failed to fetch latest daily summary date: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return models.DayOf(rows[0].Date), nil
}

func (s *SupabaseStore) AdCreatives(ctx context.Context, product, start, end string) ([]models.AdCreative, error) {
	// id breaks spend ties so pages do not overlap
	rows, err := fetchAll[models.AdCreative](ctx, s, TableAdCreatives, rangeQuery(product, start, end, "spend.desc,id.asc"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ad creatives: %w", err)
	}
	return rows, nil
}

func (s *SupabaseStore) UnattributedLeads(ctx context.Context, product, start, end string) ([]models.UnattributedLead, error) {
	rows, err := fetchAll[map[string]any](ctx, s, TableUnattributedLeads, rangeQuery(product, start, end, "date.desc"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unattributed leads: %w", err)
	}
	out := make([]models.UnattributedLead, 0, len(rows))
	for _, r := range rows {
		out = append(out, LeadFromRow(r))
	}
	return out, nil
}

// fetchAll pages through a query until a short page comes back.
func fetchAll[T any](ctx context.Context, s *SupabaseStore, table string, q url.Values) ([]T, error) {
	out := []T{}
	for offset := 0; ; offset += s.pageSize {
		q.Set("limit", strconv.Itoa(s.pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page []T
		if err := s.get(ctx, table, q, &page); err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < s.pageSize {
			return out, nil
		}
	}
}

// get runs one GET with retries. Transport errors, 429 and 5xx responses
// are retried with exponential backoff and jitter.
func (s *SupabaseStore) get(ctx context.Context, table string, q url.Values, dst any) error {
	endpoint := s.baseURL + "/rest/v1/" + table + "?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			sleep := time.Duration(1<<(attempt-1)) * s.backoff
			if s.backoff > 0 {
				sleep += time.Duration(rand.Int63n(int64(s.backoff)))
			}
			s.logger.Warn("retrying supabase request",
				zap.String("table", table),
				zap.Int("attempt", attempt),
				zap.Duration("sleep", sleep),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
		}

		err := s.do(ctx, endpoint, dst)
		if err == nil {
			return nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return lastErr
}

func (s *SupabaseStore) do(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Status: resp.StatusCode, Body: string(b)}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (s *SupabaseStore) Name() string { return "supabase" }

// Health reads one row of the daily summary table.
func (s *SupabaseStore) Health(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "date")
	q.Set("limit", "1")
	var rows []json.RawMessage
	if err := s.do(ctx, s.baseURL+"/rest/v1/"+TableDailySummary+"?"+q.Encode(), &rows); err != nil {
		return fmt.Errorf("supabase health check failed: %w", err)
	}
	return nil
}
