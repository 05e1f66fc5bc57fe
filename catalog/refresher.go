package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/singleflight"
)

// FreshnessState classifies the published snapshot relative to the
// configured max age and any in-flight refresh.
type FreshnessState string

const (
	// StateFresh means the snapshot is within its max age.
	StateFresh FreshnessState = "fresh"
	// StateStale means the snapshot is missing, too old, or the most
	// recent refresh attempt failed; the last good snapshot keeps being
	// served while a retry is eligible.
	StateStale FreshnessState = "stale"
	// StateRefreshing means a fetch is currently in flight.
	StateRefreshing FreshnessState = "refreshing"
)

// RebuildResult summarizes a successful refresh.
type RebuildResult struct {
	FetchedAt time.Time `json:"fetched_at"`
	Records   int       `json:"records"`
}

// RefresherOption customizes a Refresher.
type RefresherOption func(*Refresher)

// WithMaxAge overrides the staleness threshold.
func WithMaxAge(maxAge time.Duration) RefresherOption {
	return func(r *Refresher) { r.maxAge = maxAge }
}

// WithFetchTimeout bounds a single upstream fetch attempt.
func WithFetchTimeout(timeout time.Duration) RefresherOption {
	return func(r *Refresher) { r.fetchTimeout = timeout }
}

// WithInterval overrides the background cycle period.
func WithInterval(interval time.Duration) RefresherOption {
	return func(r *Refresher) { r.interval = interval }
}

// WithLogger attaches a logger; a nil logger silences the refresher.
func WithLogger(lg glog.Logger) RefresherOption {
	return func(r *Refresher) { r.logger = lg }
}

// WithOnPublish registers a hook invoked after every successful publish,
// e.g. warm-start persistence or metrics. Hook failures must be handled by
// the hook itself; the refresher only logs them via the hook's own means.
func WithOnPublish(hook func(*Snapshot)) RefresherOption {
	return func(r *Refresher) { r.onPublish = append(r.onPublish, hook) }
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) { r.now = now }
}

// Refresher owns the freshness policy: it decides staleness, drives
// on-demand and scheduled rebuilds, guarantees at most one fetch in flight,
// and publishes results to the store.
type Refresher struct {
	store   *Store
	fetcher Fetcher

	maxAge       time.Duration
	interval     time.Duration
	fetchTimeout time.Duration
	logger       glog.Logger
	now          func() time.Time
	onPublish    []func(*Snapshot)

	group singleflight.Group

	mu         sync.Mutex
	refreshing bool
	lastErr    error
	lastErrAt  time.Time
}

// NewRefresher wires a refresher to its store and fetcher.
func NewRefresher(store *Store, fetcher Fetcher, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		store:        store,
		fetcher:      fetcher,
		maxAge:       24 * time.Hour,
		interval:     24 * time.Hour,
		fetchTimeout: 30 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State derives the freshness state from the snapshot age, the most recent
// failure, and whether a fetch is in flight.
func (r *Refresher) State() FreshnessState {
	r.mu.Lock()
	refreshing := r.refreshing
	lastErrAt := r.lastErrAt
	r.mu.Unlock()

	if refreshing {
		return StateRefreshing
	}

	snap := r.store.Current()
	if snap.Empty() {
		return StateStale
	}
	if snap.Age(r.now()) > r.maxAge {
		return StateStale
	}
	// A failed rebuild after the current snapshot was fetched leaves the
	// snapshot served but marks it stale so the next probe retries.
	if !lastErrAt.IsZero() && lastErrAt.After(snap.FetchedAt) {
		return StateStale
	}
	return StateFresh
}

// LastError returns the most recent fetch failure and when it happened.
func (r *Refresher) LastError() (error, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr, r.lastErrAt
}

// EnsureFresh is the read-path freshness probe. When the snapshot is stale
// it starts a background refresh and returns immediately; stale data keeps
// being served while the refresh proceeds. The returned state is the state
// observed at probe time.
func (r *Refresher) EnsureFresh() FreshnessState {
	state := r.State()
	if state == StateStale {
		_, _ = r.Rebuild(context.Background(), false)
		return StateRefreshing
	}
	return state
}

// Rebuild refreshes the snapshot. When wait is false it starts a refresh if
// none is in flight and returns immediately with a nil result. When wait is
// true it blocks until the in-flight (or newly started) fetch completes, or
// until ctx is done, in which case ErrRebuildTimeout is returned while the
// fetch itself keeps running for other waiters.
//
// Concurrent calls coalesce into one upstream fetch.
func (r *Refresher) Rebuild(ctx context.Context, wait bool) (*RebuildResult, error) {
	ch := r.group.DoChan("refresh", r.doRefresh)
	if !wait {
		return nil, nil
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		snap := res.Val.(*Snapshot)
		return &RebuildResult{FetchedAt: snap.FetchedAt, Records: snap.Len()}, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ErrRebuildTimeout, ctx.Err().Error())
	}
}

// doRefresh performs the single coalesced fetch-and-publish. It runs on its
// own context so abandoning waiters never cancels the fetch.
func (r *Refresher) doRefresh() (any, error) {
	r.mu.Lock()
	r.refreshing = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.refreshing = false
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.fetchTimeout)
	defer cancel()

	started := r.now()
	records, err := r.fetcher.Fetch(ctx)
	if err != nil {
		r.mu.Lock()
		r.lastErr = err
		r.lastErrAt = r.now()
		r.mu.Unlock()
		if r.logger != nil {
			r.logger.Warn("catalog refresh failed, serving previous snapshot",
				zap.Error(err),
				zap.Duration("elapsed", r.now().Sub(started)))
		}
		return nil, errors.Wrap(err, "refresh catalog")
	}

	snap := &Snapshot{Records: records, FetchedAt: r.now()}
	r.store.Publish(snap)

	r.mu.Lock()
	r.lastErr = nil
	r.lastErrAt = time.Time{}
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Info("catalog refreshed",
			zap.Int("records", snap.Len()),
			zap.Duration("elapsed", r.now().Sub(started)))
	}

	for _, hook := range r.onPublish {
		hook(snap)
	}
	return snap, nil
}

// Start launches the background refresh cycle. The cycle runs until ctx is
// canceled; a failed tick is logged and the next tick still fires, so the
// loop never terminates the process.
func (r *Refresher) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.Rebuild(ctx, true); err != nil {
					if r.logger != nil {
						r.logger.Warn("scheduled catalog refresh failed", zap.Error(err))
					}
				}
			}
		}
	}()
}
