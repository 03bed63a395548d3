// Package querycache is a keyed stale-while-revalidate cache for remote
// queries. Concurrent requests for the same key collapse into one producer
// call, cached values are served while a background refresh runs, and a
// failed refresh never discards the last good value.
package querycache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	dErrors "cosurvival/pkg/domain-errors"
	"cosurvival/pkg/platform/sentinel"
)

// Producer fetches the value for a key. The context is owned by the cache,
// not by the caller that triggered the fetch.
type Producer func(ctx context.Context) (any, error)

const (
	defaultMaxRetries = 3
	defaultRetryBase  = time.Second
	defaultRetryCap   = 30 * time.Second
	defaultGCTime     = 5 * time.Minute
)

type entry struct {
	data      any
	hasData   bool
	updatedAt time.Time
	err       error
	// fetching mirrors whether group holds an active call for this key.
	// Both change together under Cache.mu.
	fetching    bool
	invalidated bool
	version     uint64
	subscribers map[uint64]*subscription
	lastUsed    time.Time
}

func (e *entry) result() Result {
	return Result{
		Data:       e.data,
		HasData:    e.hasData,
		Err:        e.err,
		UpdatedAt:  e.updatedAt,
		IsLoading:  e.fetching && !e.hasData,
		IsFetching: e.fetching,
	}
}

type subscription struct {
	mu          sync.Mutex
	fn          func(Result)
	lastVersion uint64
	closed      bool
}

// deliver drops results older than the last one delivered and anything
// arriving after unsubscribe. fn runs with s.mu held, so it must not call its
// own unsubscribe or Set on its own key.
func (s *subscription) deliver(r Result, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || version <= s.lastVersion {
		return
	}
	s.lastVersion = version
	s.fn(r)
}

// Cache holds one entry per key. The zero value is not usable; call New.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	nextSub uint64
	closed  bool

	// ctx scopes background refreshes. It outlives any single consumer and
	// is cancelled only by Close.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now        func() time.Time
	logger     *slog.Logger
	maxRetries int
	retryBase  time.Duration
	retryCap   time.Duration
	retryable  func(error) bool
	gcTime     time.Duration
	lastGC     time.Time
}

// Option configures a Cache.
type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithClock replaces time.Now for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithRetry sets how many times a failing producer is retried and the
// exponential delay bounds between attempts. maxRetries 0 disables retries.
func WithRetry(maxRetries int, base, ceiling time.Duration) Option {
	return func(c *Cache) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if base > 0 {
			c.retryBase = base
		}
		if ceiling > 0 {
			c.retryCap = ceiling
		}
	}
}

// WithGCTime sets how long an entry with no subscribers and no refresh in
// flight is kept after its last use. Zero keeps entries forever.
func WithGCTime(d time.Duration) Option {
	return func(c *Cache) {
		if d >= 0 {
			c.gcTime = d
		}
	}
}

// WithRetryable decides which producer errors are retried.
func WithRetryable(fn func(error) bool) Option {
	return func(c *Cache) {
		if fn != nil {
			c.retryable = fn
		}
	}
}

// New creates a cache. Close it to stop background refreshes.
func New(opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		entries:    make(map[string]*entry),
		ctx:        ctx,
		cancel:     cancel,
		now:        time.Now,
		logger:     slog.Default(),
		maxRetries: defaultMaxRetries,
		retryBase:  defaultRetryBase,
		retryCap:   defaultRetryCap,
		retryable:  defaultRetryable,
		gcTime:     defaultGCTime,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !dErrors.IsClientError(err)
}

// RunOption tunes a single Run or Fetch.
type RunOption func(*runConfig)

type runConfig struct {
	staleTime time.Duration
	enabled   bool
}

// StaleTime is how long a value counts as fresh. Zero (the default) means
// every Run refreshes, still deduplicated against in-flight fetches.
func StaleTime(d time.Duration) RunOption {
	return func(rc *runConfig) {
		if d > 0 {
			rc.staleTime = d
		}
	}
}

// Enabled suppresses fetching entirely when false, e.g. while a required
// input is not known yet.
func Enabled(enabled bool) RunOption {
	return func(rc *runConfig) {
		rc.enabled = enabled
	}
}

func buildRunConfig(opts []RunOption) runConfig {
	rc := runConfig{enabled: true}
	for _, opt := range opts {
		opt(&rc)
	}
	return rc
}

// Run returns the current state for key without blocking. A fresh value is
// returned as is. A missing or stale value is returned together with a
// background refresh, unless one is already in flight for the key.
func (c *Cache) Run(key Key, producer Producer, opts ...RunOption) Result {
	rc := buildRunConfig(opts)
	if !rc.enabled {
		return Result{}
	}
	k := key.String()

	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(k)
	if c.freshLocked(e, rc.staleTime) {
		lookupsTotal.WithLabelValues(key.Name(), "fresh").Inc()
		return e.result()
	}
	c.recordLookupLocked(key, e)
	if !c.closed {
		c.refreshLocked(key, k, e, producer)
	}
	return e.result()
}

// Fetch is the blocking form of Run: it returns a fresh value immediately or
// waits for the shared refresh. Cancelling ctx abandons the wait only; the
// refresh still completes and updates the entry for other consumers.
func (c *Cache) Fetch(ctx context.Context, key Key, producer Producer, opts ...RunOption) Result {
	rc := buildRunConfig(opts)
	if !rc.enabled {
		return Result{}
	}
	k := key.String()

	c.mu.Lock()
	e := c.entryLocked(k)
	if c.freshLocked(e, rc.staleTime) {
		lookupsTotal.WithLabelValues(key.Name(), "fresh").Inc()
		r := e.result()
		c.mu.Unlock()
		return r
	}
	if c.closed {
		r := e.result()
		c.mu.Unlock()
		if !r.HasData {
			r.Err = sentinel.ErrClosed
		}
		return r
	}
	c.recordLookupLocked(key, e)
	ch := c.refreshLocked(key, k, e, producer)
	c.mu.Unlock()

	select {
	case res := <-ch:
		return res.Val.(Result)
	case <-ctx.Done():
		r := c.Peek(key)
		if r.Err == nil {
			r.Err = ctx.Err()
		}
		return r
	}
}

// Peek returns the current state for key without fetching.
func (c *Cache) Peek(key Key) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok {
		return e.result()
	}
	return Result{}
}

// Invalidate marks key stale so the next Run or Fetch refreshes it. The
// cached value keeps being served until then.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok {
		e.invalidated = true
	}
}

// Set stores data for key as if a fetch had just succeeded, and notifies
// subscribers.
func (c *Cache) Set(key Key, data any) {
	k := key.String()
	c.mu.Lock()
	e := c.entryLocked(k)
	e.data, e.hasData, e.err = data, true, nil
	e.updatedAt = c.now()
	e.invalidated = false
	e.version++
	res, version, subs := e.result(), e.version, subscribersOf(e)
	c.mu.Unlock()

	for _, s := range subs {
		s.deliver(res, version)
	}
}

// Subscribe registers fn for every completed refresh of key. fn runs on the
// refreshing goroutine. After unsubscribe returns, fn is never called again;
// in-flight refreshes still update the shared entry. fn must not call its own
// unsubscribe or Set on the same key; both would deadlock.
func (c *Cache) Subscribe(key Key, fn func(Result)) (unsubscribe func()) {
	k := key.String()
	s := &subscription{fn: fn}

	c.mu.Lock()
	e := c.entryLocked(k)
	c.nextSub++
	id := c.nextSub
	e.subscribers[id] = s
	s.lastVersion = e.version
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			if e, ok := c.entries[k]; ok {
				delete(e.subscribers, id)
			}
			c.mu.Unlock()
			s.mu.Lock()
			s.closed = true
			s.mu.Unlock()
		})
	}
}

// Close cancels background refreshes and waits for them to return.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

func (c *Cache) entryLocked(k string) *entry {
	now := c.now()
	c.collectLocked(now)
	e, ok := c.entries[k]
	if !ok {
		e = &entry{subscribers: make(map[uint64]*subscription)}
		c.entries[k] = e
	}
	e.lastUsed = now
	return e
}

// collectLocked drops entries nobody watches or refreshes once they have been
// idle for gcTime. It scans at most once per gcTime.
func (c *Cache) collectLocked(now time.Time) {
	if c.gcTime <= 0 || now.Sub(c.lastGC) < c.gcTime {
		return
	}
	c.lastGC = now
	for k, e := range c.entries {
		if e.fetching || len(e.subscribers) > 0 || now.Sub(e.lastUsed) < c.gcTime {
			continue
		}
		delete(c.entries, k)
		evictionsTotal.Inc()
	}
}

func (c *Cache) freshLocked(e *entry, staleTime time.Duration) bool {
	if !e.hasData || e.invalidated || staleTime <= 0 {
		return false
	}
	return c.now().Sub(e.updatedAt) < staleTime
}

func (c *Cache) recordLookupLocked(key Key, e *entry) {
	if e.hasData {
		lookupsTotal.WithLabelValues(key.Name(), "stale").Inc()
	} else {
		lookupsTotal.WithLabelValues(key.Name(), "miss").Inc()
	}
}

// refreshLocked joins the in-flight refresh for k or starts one. Caller
// holds c.mu.
func (c *Cache) refreshLocked(key Key, k string, e *entry, producer Producer) <-chan singleflight.Result {
	if !e.fetching {
		e.fetching = true
		c.wg.Add(1)
		inflightRefreshes.Inc()
	}
	return c.group.DoChan(k, func() (any, error) {
		return c.execute(key, k, producer), nil
	})
}

// execute runs the producer and commits its outcome. It runs once per
// refresh, on a goroutine owned by singleflight.
func (c *Cache) execute(key Key, k string, producer Producer) Result {
	defer c.wg.Done()
	defer inflightRefreshes.Dec()

	data, err := c.produce(key, producer)

	c.mu.Lock()
	e := c.entryLocked(k)
	if err == nil {
		e.data, e.hasData, e.err = data, true, nil
		e.updatedAt = c.now()
		e.invalidated = false
		refreshesTotal.WithLabelValues(key.Name(), "success").Inc()
	} else {
		e.err = err
		refreshesTotal.WithLabelValues(key.Name(), "failure").Inc()
	}
	e.fetching = false
	c.group.Forget(k)
	e.version++
	res, version, subs := e.result(), e.version, subscribersOf(e)
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("query refresh failed",
			"query", key.Name(),
			"serving_stale", res.HasData,
			"error", err,
		)
	}
	for _, s := range subs {
		s.deliver(res, version)
	}
	return res
}

func (c *Cache) produce(key Key, producer Producer) (any, error) {
	for attempt := 0; ; attempt++ {
		if err := c.ctx.Err(); err != nil {
			return nil, sentinel.ErrClosed
		}
		data, err := producer(c.ctx)
		if err == nil {
			return data, nil
		}
		if attempt >= c.maxRetries || !c.retryable(err) || c.ctx.Err() != nil {
			return nil, err
		}
		retriesTotal.WithLabelValues(key.Name()).Inc()
		timer := time.NewTimer(c.backoff(attempt))
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}
	}
}

func (c *Cache) backoff(attempt int) time.Duration {
	d := c.retryBase
	for i := 0; i < attempt && d < c.retryCap; i++ {
		d *= 2
	}
	return min(d, c.retryCap)
}

func subscribersOf(e *entry) []*subscription {
	subs := make([]*subscription, 0, len(e.subscribers))
	for _, s := range e.subscribers {
		subs = append(subs, s)
	}
	return subs
}
