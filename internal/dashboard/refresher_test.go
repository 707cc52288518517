package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/catalog"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/daterange"
)

type countingLoader struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func newCountingLoader() *countingLoader {
	return &countingLoader{calls: map[string]int{}}
}

func (l *countingLoader) Load(_ context.Context, productID string, rg daterange.Range) (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[productID+"|"+rg.String()]++
	if l.err != nil {
		return nil, l.err
	}
	return &Snapshot{Product: catalog.Product{ID: productID}, Range: rg}, nil
}

func (l *countingLoader) count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[key]
}

type recordingInvalidator struct {
	products []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, product string) error {
	r.products = append(r.products, product)
	return nil
}

func TestRefresherGetTracksAndReuses(t *testing.T) {
	loader := newCountingLoader()
	r := NewRefresher(loader, testResolver(), RefresherConfig{}, zap.NewNop())

	q := Query{ProductID: "webinarflix", Preset: daterange.Yesterday}
	snap, err := r.Get(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-09", snap.Range.Start)

	_, err = r.Get(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, loader.count("webinarflix|2026-02-09..2026-02-09"))
	assert.Equal(t, 1, r.Tracked())
}

func TestRefresherGetDoesNotTrackErrors(t *testing.T) {
	loader := newCountingLoader()
	loader.err = errors.New("boom")
	r := NewRefresher(loader, testResolver(), RefresherConfig{}, zap.NewNop())

	_, err := r.Get(context.Background(), Query{ProductID: "webinarflix", Preset: daterange.Today})
	assert.Error(t, err)
	assert.Equal(t, 0, r.Tracked())
}

func TestRefresherEvictsLeastRecentlyUsed(t *testing.T) {
	loader := newCountingLoader()
	r := NewRefresher(loader, testResolver(), RefresherConfig{MaxTracked: 2}, zap.NewNop())
	tick := fixedNow
	r.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	ctx := context.Background()
	first := Query{ProductID: "webinarflix", Preset: daterange.Today}
	second := Query{ProductID: "webinarflix", Preset: daterange.Yesterday}
	third := Query{ProductID: "webinarflix", Preset: daterange.Last7Days}

	for _, q := range []Query{first, second} {
		_, err := r.Get(ctx, q)
		require.NoError(t, err)
	}
	// Touch the first so the second becomes the oldest.
	_, err := r.Get(ctx, first)
	require.NoError(t, err)
	_, err = r.Get(ctx, third)
	require.NoError(t, err)

	assert.Equal(t, 2, r.Tracked())
	r.mu.Lock()
	_, hasFirst := r.entries[first.key()]
	_, hasSecond := r.entries[second.key()]
	r.mu.Unlock()
	assert.True(t, hasFirst)
	assert.False(t, hasSecond)
}

func TestRefresherRefreshByProduct(t *testing.T) {
	loader := newCountingLoader()
	inv := &recordingInvalidator{}
	r := NewRefresher(loader, testResolver(), RefresherConfig{Invalidator: inv}, zap.NewNop())
	ctx := context.Background()

	explicit := daterange.Range{Start: "2026-02-01", End: "2026-02-05"}
	_, err := r.Get(ctx, Query{ProductID: "webinarflix", Range: explicit})
	require.NoError(t, err)
	_, err = r.Get(ctx, Query{ProductID: "fib-live", Range: explicit})
	require.NoError(t, err)

	require.NoError(t, r.Refresh(ctx, "webinarflix", "manual"))
	assert.Equal(t, 2, loader.count("webinarflix|"+explicit.String()))
	assert.Equal(t, 1, loader.count("fib-live|"+explicit.String()))
	assert.Equal(t, []string{"webinarflix"}, inv.products)

	require.NoError(t, r.Refresh(ctx, "", "timer"))
	assert.Equal(t, 3, loader.count("webinarflix|"+explicit.String()))
	assert.Equal(t, 2, loader.count("fib-live|"+explicit.String()))
	assert.Len(t, inv.products, 1)
}

func TestRefresherRefreshReportsErrors(t *testing.T) {
	loader := newCountingLoader()
	r := NewRefresher(loader, testResolver(), RefresherConfig{}, zap.NewNop())
	ctx := context.Background()

	_, err := r.Get(ctx, Query{ProductID: "webinarflix", Preset: daterange.Today})
	require.NoError(t, err)

	loader.mu.Lock()
	loader.err = errors.New("store down")
	loader.mu.Unlock()

	err = r.Refresh(ctx, "", "timer")
	assert.ErrorContains(t, err, "store down")
	// The stale snapshot is kept.
	assert.Equal(t, 1, r.Tracked())
}

func TestRefresherRunStopsOnCancel(t *testing.T) {
	loader := newCountingLoader()
	r := NewRefresher(loader, testResolver(), RefresherConfig{Interval: 5 * time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	_, err := r.Get(ctx, Query{ProductID: "webinarflix", Preset: daterange.Today})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return loader.count("webinarflix|2026-02-10..2026-02-10") > 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}

type failingProductLoader struct {
	*countingLoader
	fail map[string]error
}

func (l failingProductLoader) Load(ctx context.Context, productID string, rg daterange.Range) (*Snapshot, error) {
	if err := l.fail[productID]; err != nil {
		return nil, err
	}
	return l.countingLoader.Load(ctx, productID, rg)
}

func TestRefresherRefreshJoinsEveryError(t *testing.T) {
	loader := failingProductLoader{countingLoader: newCountingLoader(), fail: map[string]error{}}
	r := NewRefresher(loader, testResolver(), RefresherConfig{}, zap.NewNop())
	ctx := context.Background()

	for _, p := range []string{"webinarflix", "fib-live", "upgrade-persona"} {
		_, err := r.Get(ctx, Query{ProductID: p, Preset: daterange.Yesterday})
		require.NoError(t, err)
	}

	errWebinar := errors.New("webinarflix down")
	errFib := errors.New("fib-live down")
	loader.fail["webinarflix"] = errWebinar
	loader.fail["fib-live"] = errFib

	err := r.Refresh(ctx, "", "timer")
	require.Error(t, err)
	assert.ErrorIs(t, err, errWebinar)
	assert.ErrorIs(t, err, errFib)
	assert.Equal(t, 2, loader.count("upgrade-persona|2026-02-09..2026-02-09"))
	assert.Equal(t, 3, r.Tracked())
}
