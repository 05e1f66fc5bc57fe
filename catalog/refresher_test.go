package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher is a controllable Fetcher for refresher tests.
type stubFetcher struct {
	mu      sync.Mutex
	calls   atomic.Int64
	records []ModelRecord
	err     error
	delay   time.Duration
	release chan struct{} // when set, Fetch blocks until closed
}

func (f *stubFetcher) Fetch(ctx context.Context) ([]ModelRecord, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ModelRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *stubFetcher) setResult(records []ModelRecord, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = records
	f.err = err
}

func TestRebuildSynchronousPublishes(t *testing.T) {
	store := NewStore()
	fetcher := &stubFetcher{records: []ModelRecord{{ID: "openai/gpt-4o"}}}
	refresher := NewRefresher(store, fetcher)

	res, err := refresher.Rebuild(context.Background(), true)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Records)
	assert.False(t, res.FetchedAt.IsZero())

	snap := store.Current()
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, StateFresh, refresher.State())
}

func TestRebuildFailureKeepsPreviousSnapshot(t *testing.T) {
	store := NewStore()
	fetcher := &stubFetcher{records: []ModelRecord{{ID: "openai/gpt-4o"}}}
	refresher := NewRefresher(store, fetcher)

	_, err := refresher.Rebuild(context.Background(), true)
	require.NoError(t, err)
	good := store.Current()

	fetcher.setResult(nil, errors.New("upstream exploded"))
	_, err = refresher.Rebuild(context.Background(), true)
	require.Error(t, err)

	assert.Same(t, good, store.Current(), "failed refresh must not touch the published snapshot")
	assert.Equal(t, StateStale, refresher.State(), "failed refresh marks the snapshot stale")

	lastErr, at := refresher.LastError()
	require.Error(t, lastErr)
	assert.False(t, at.IsZero())

	// A later successful rebuild clears the failure.
	fetcher.setResult([]ModelRecord{{ID: "openai/gpt-4o"}, {ID: "x/y"}}, nil)
	_, err = refresher.Rebuild(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, StateFresh, refresher.State())
	assert.Equal(t, 2, store.Current().Len())
}

func TestConcurrentRebuildsCoalesce(t *testing.T) {
	store := NewStore()
	fetcher := &stubFetcher{
		records: []ModelRecord{{ID: "openai/gpt-4o"}},
		release: make(chan struct{}),
	}
	refresher := NewRefresher(store, fetcher, WithFetchTimeout(5*time.Second))

	const waiters = 10
	results := make(chan *RebuildResult, waiters)
	errs := make(chan error, waiters)

	var wg sync.WaitGroup
	var entered atomic.Int64
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entered.Add(1)
			res, err := refresher.Rebuild(context.Background(), true)
			results <- res
			errs <- err
		}()
	}

	// Give every waiter a chance to join the in-flight attempt, then let
	// the single fetch finish.
	require.Eventually(t, func() bool {
		return entered.Load() == waiters && refresher.State() == StateRefreshing
	}, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(fetcher.release)
	wg.Wait()

	assert.Equal(t, int64(1), fetcher.calls.Load(), "concurrent rebuilds must coalesce into one upstream fetch")

	var fetchedAt time.Time
	for i := 0; i < waiters; i++ {
		require.NoError(t, <-errs)
		res := <-results
		require.NotNil(t, res)
		if fetchedAt.IsZero() {
			fetchedAt = res.FetchedAt
		}
		assert.Equal(t, fetchedAt, res.FetchedAt, "all waiters observe the same snapshot timestamp")
	}
}

func TestRebuildAsynchronousReturnsImmediately(t *testing.T) {
	store := NewStore()
	fetcher := &stubFetcher{
		records: []ModelRecord{{ID: "openai/gpt-4o"}},
		release: make(chan struct{}),
	}
	refresher := NewRefresher(store, fetcher, WithFetchTimeout(5*time.Second))

	done := make(chan struct{})
	go func() {
		_, _ = refresher.Rebuild(context.Background(), false)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("asynchronous rebuild must not block on the fetch")
	}

	close(fetcher.release)
	require.Eventually(t, func() bool {
		return store.Current().Len() == 1
	}, time.Second, time.Millisecond)
}

func TestRebuildWaiterTimeoutDoesNotCancelFetch(t *testing.T) {
	store := NewStore()
	fetcher := &stubFetcher{
		records: []ModelRecord{{ID: "openai/gpt-4o"}},
		release: make(chan struct{}),
	}
	refresher := NewRefresher(store, fetcher, WithFetchTimeout(5*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := refresher.Rebuild(ctx, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRebuildTimeout), "abandoned wait surfaces ErrRebuildTimeout, got %v", err)

	// The fetch keeps running and still publishes for everyone else.
	close(fetcher.release)
	require.Eventually(t, func() bool {
		return store.Current().Len() == 1
	}, time.Second, time.Millisecond)
}

func TestEnsureFreshStates(t *testing.T) {
	store := NewStore()
	fetcher := &stubFetcher{records: []ModelRecord{{ID: "openai/gpt-4o"}}}

	now := time.Now()
	clock := func() time.Time { return now }
	refresher := NewRefresher(store, fetcher, WithMaxAge(time.Hour), WithClock(clock))

	// Empty store is stale; the probe kicks off a refresh.
	assert.Equal(t, StateRefreshing, refresher.EnsureFresh())
	require.Eventually(t, func() bool {
		return refresher.State() == StateFresh
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1, store.Current().Len())
	calls := fetcher.calls.Load()

	// Within max age, repeated probes never refetch.
	assert.Equal(t, StateFresh, refresher.EnsureFresh())
	assert.Equal(t, calls, fetcher.calls.Load())

	// Once the snapshot outlives its max age it turns stale and the next
	// probe triggers a background refresh.
	now = now.Add(2 * time.Hour)
	assert.Equal(t, StateRefreshing, refresher.EnsureFresh())
	require.Eventually(t, func() bool {
		return fetcher.calls.Load() > calls
	}, time.Second, time.Millisecond)
}

func TestOnPublishHooksRun(t *testing.T) {
	store := NewStore()
	fetcher := &stubFetcher{records: []ModelRecord{{ID: "openai/gpt-4o"}}}

	var published atomic.Int64
	refresher := NewRefresher(store, fetcher, WithOnPublish(func(snap *Snapshot) {
		if snap.Len() == 1 {
			published.Add(1)
		}
	}))

	_, err := refresher.Rebuild(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), published.Load())
}

func TestBackgroundCycleSurvivesFailures(t *testing.T) {
	store := NewStore()
	fetcher := &stubFetcher{err: errors.New("always down")}
	refresher := NewRefresher(store, fetcher, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	refresher.Start(ctx)

	// Several ticks fire and fail without the loop dying.
	require.Eventually(t, func() bool {
		return fetcher.calls.Load() >= 3
	}, time.Second, time.Millisecond)

	fetcher.setResult([]ModelRecord{{ID: "openai/gpt-4o"}}, nil)
	require.Eventually(t, func() bool {
		return store.Current().Len() == 1
	}, time.Second, time.Millisecond)
}
