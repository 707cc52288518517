package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/config"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

func newTestSupabase(t *testing.T, h http.HandlerFunc, pageSize int) *SupabaseStore {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewSupabaseStore(config.SupabaseConfig{
		URL:        srv.URL,
		Key:        "anon-key",
		MaxRetries: 2,
		PageSize:   pageSize,
	}, zap.NewNop(), WithBackoff(time.Millisecond))
}

func TestSupabaseDailySummariesQuery(t *testing.T) {
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/daily_summary", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "eq.webinarflix", q.Get("product_name"))
		assert.Equal(t, []string{"gte.2026-02-01", "lte.2026-02-07"}, q["date"])
		assert.Equal(t, "date.asc", q.Get("order"))
		assert.Equal(t, "0", q.Get("offset"))

		_ = json.NewEncoder(w).Encode([]models.DailySummary{
			{Date: "2026-02-01", ProductName: "webinarflix", TotalSpend: 10.5, SheetMqls: 2},
		})
	}, 100)

	rows, err := s.DailySummaries(context.Background(), "webinarflix", "2026-02-01", "2026-02-07")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 10.5, rows[0].TotalSpend)
	assert.Equal(t, int64(2), rows[0].SheetMqls)
}

func TestSupabasePaging(t *testing.T) {
	var calls atomic.Int32
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		var page []models.AdCreative
		for i := offset; i < 5 && i < offset+2; i++ {
			page = append(page, models.AdCreative{ID: int64(i), AdID: strconv.Itoa(i)})
		}
		if page == nil {
			page = []models.AdCreative{}
		}
		_ = json.NewEncoder(w).Encode(page)
	}, 2)

	rows, err := s.AdCreatives(context.Background(), "webinarflix", "2026-02-01", "2026-02-07")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSupabaseRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"date":"2026-02-04"}]`))
	}, 100)

	d, err := s.LatestDailySummaryDate(context.Background(), "webinarflix")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-04", d)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSupabaseGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 100)

	_, err := s.DailySummaries(context.Background(), "webinarflix", "2026-02-01", "2026-02-07")
	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSupabaseDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"relation does not exist"}`, http.StatusNotFound)
	}, 100)

	_, err := s.UnattributedLeads(context.Background(), "upgrade-persona", "2026-02-01", "2026-02-07")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSupabaseLatestDateEmpty(t *testing.T) {
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "date.desc", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[]`))
	}, 100)

	d, err := s.LatestDailySummaryDate(context.Background(), "fib-live")
	require.NoError(t, err)
	assert.Empty(t, d)
}

func TestSupabaseUnattributedLeadsDecodesAliases(t *testing.T) {
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"date":"2026-02-02","name":"Eva","phone":null,"telefone":"1199","form_name":"F1","reason":"no match"}]`))
	}, 100)

	rows, err := s.UnattributedLeads(context.Background(), "upgrade-persona", "2026-02-01", "2026-02-07")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.UnattributedLead{Date: "2026-02-02", Name: "Eva", Phone: "1199", Form: "F1", Reason: "no match"}, rows[0])
}

func TestSupabaseHonorsContext(t *testing.T) {
	s := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 100)
	s.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.DailySummaries(ctx, "webinarflix", "2026-02-01", "2026-02-07")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSupabaseHealth(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/daily_summary", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	s := NewSupabaseStore(config.SupabaseConfig{URL: srv.URL, Key: "k"}, zap.NewNop())
	assert.Equal(t, "supabase", s.Name())
	require.NoError(t, s.Health(context.Background()))

	status.Store(http.StatusUnauthorized)
	assert.Error(t, s.Health(context.Background()))
}
