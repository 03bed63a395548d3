// Package store holds the process-wide dashboard state. Every mutation is
// applied atomically, persisted as a JSON snapshot and then announced to
// subscribers, in call order.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"cosurvival/internal/dashboard/models"
	dErrors "cosurvival/pkg/domain-errors"
	"cosurvival/pkg/platform/circuit"
	"cosurvival/pkg/platform/sentinel"
)

// SnapshotKey is the fixed key the state is persisted under.
const SnapshotKey = "cosurvival-store"

// SnapshotVersion is written into every snapshot. Snapshots carrying another
// version are ignored on load.
const SnapshotVersion = 0

// SnapshotStore persists opaque snapshot bytes. Load returns
// sentinel.ErrNotFound when nothing has been saved under key.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type envelope struct {
	State   models.State `json:"state"`
	Version int          `json:"version"`
}

// Selector picks the slice of state a subscriber cares about.
type Selector func(models.State) any

// Listener receives the newly selected value.
type Listener func(any)

type subscriber struct {
	selector Selector
	listener Listener
	last     any
}

// Store is safe for concurrent use. Listeners run synchronously on the
// mutating goroutine and must not call setters or Subscribe.
type Store struct {
	// writeMu serialises mutate, persist and notify so they happen in call order.
	writeMu sync.Mutex

	mu       sync.RWMutex
	state    models.State
	hydrated bool

	subsMu  sync.Mutex
	subs    map[uint64]*subscriber
	nextSub uint64

	snapshots SnapshotStore
	breaker   *circuit.Breaker
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithSnapshotStore enables persistence. Without it the store is
// memory-only.
func WithSnapshotStore(snapshots SnapshotStore) Option {
	return func(s *Store) {
		s.snapshots = snapshots
	}
}

// New creates a store seeded from the persisted snapshot when one exists,
// otherwise from models.InitialState. A snapshot that cannot be read or
// decoded is logged and ignored.
func New(ctx context.Context, opts ...Option) *Store {
	s := &Store{
		state:   models.InitialState(),
		subs:    make(map[uint64]*subscriber),
		breaker: circuit.New("snapshot", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(1)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	raw, err := s.snapshots.Load(ctx, SnapshotKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		return
	}
	if err != nil {
		s.persistFailed(ctx, "load", dErrors.Wrap(err, dErrors.CodeStorage, "load snapshot"))
		return
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.persistFailed(ctx, "load", dErrors.Wrap(err, dErrors.CodeStorage, "decode snapshot"))
		return
	}
	if env.Version != SnapshotVersion {
		s.logger.WarnContext(ctx, "ignoring snapshot with unknown version",
			"key", SnapshotKey,
			"version", env.Version,
		)
		return
	}

	state := env.State.Clone()
	if state.UserID == "" {
		state.UserID = models.AnonymousUserID
	}
	if state.UserRole == "" {
		state.UserRole = models.RoleConsumer
	}
	s.state = state
	s.hydrated = true
	s.logger.DebugContext(ctx, "store hydrated from snapshot",
		"key", SnapshotKey,
		"reviews", len(state.Reviews),
	)
}

// Hydrated reports whether the initial state came from a persisted snapshot.
func (s *Store) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Degraded reports whether snapshot writes are currently failing.
func (s *Store) Degraded() bool {
	return s.breaker.IsOpen()
}

// mutate applies fn to the state, persists the result and notifies
// subscribers. Persistence failures never fail the mutation.
func (s *Store) mutate(ctx context.Context, op string, fn func(*models.State)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	fn(&s.state)
	snap := s.state.Clone()
	s.mu.Unlock()
	mutationsTotal.WithLabelValues(op).Inc()

	s.persist(ctx, snap)
	s.notify(snap)
}

func (s *Store) persist(ctx context.Context, snap models.State) {
	if s.snapshots == nil {
		return
	}
	raw, err := json.Marshal(envelope{State: snap, Version: SnapshotVersion})
	if err == nil {
		err = s.snapshots.Save(ctx, SnapshotKey, raw)
	}
	if err != nil {
		s.persistFailed(ctx, "save", dErrors.Wrap(err, dErrors.CodeStorage, "save snapshot"))
		return
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		persistDegraded.Set(0)
		s.logger.InfoContext(ctx, "snapshot persistence recovered", "key", SnapshotKey)
	}
}

func (s *Store) persistFailed(ctx context.Context, op string, err error) {
	persistFailuresTotal.WithLabelValues(op).Inc()
	degraded, change := s.breaker.RecordFailure()
	switch {
	case change.Opened:
		persistDegraded.Set(1)
		s.logger.WarnContext(ctx, "snapshot persistence degraded, keeping state in memory only",
			"key", SnapshotKey,
			"op", op,
			"error", err,
		)
	case degraded:
		s.logger.DebugContext(ctx, "snapshot persistence still failing",
			"key", SnapshotKey,
			"op", op,
			"error", err,
		)
	default:
		s.logger.WarnContext(ctx, "snapshot persistence failed",
			"key", SnapshotKey,
			"op", op,
			"error", err,
		)
	}
}

func (s *Store) notify(snap models.State) {
	s.subsMu.Lock()
	type pending struct {
		listener Listener
		value    any
	}
	var calls []pending
	for _, sub := range s.subs {
		v := sub.selector(snap)
		if reflect.DeepEqual(v, sub.last) {
			continue
		}
		sub.last = v
		calls = append(calls, pending{listener: sub.listener, value: v})
	}
	s.subsMu.Unlock()

	for _, c := range calls {
		c.listener(c.value)
	}
}

// Subscribe calls listener after each committed mutation that changes the
// value returned by selector. Values handed to listeners are copies and may
// be kept. Listeners must not call Subscribe either.
func (s *Store) Subscribe(selector Selector, listener Listener) (unsubscribe func()) {
	// No mutation may commit between reading initial and registering.
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	initial := selector(s.State())

	s.subsMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = &subscriber{selector: selector, listener: listener, last: initial}
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// Watch is a typed Subscribe.
func Watch[T any](s *Store, selector func(models.State) T, listener func(T)) (unsubscribe func()) {
	return s.Subscribe(
		func(st models.State) any { return selector(st) },
		func(v any) { listener(v.(T)) },
	)
}

// State returns a deep copy of the whole state.
func (s *Store) State() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Store) Identity() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Identity()
}

// CSRFToken is the current identity's token, empty when absent.
func (s *Store) CSRFToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CSRFToken
}

func (s *Store) PipelineStages() []models.PipelineStage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ClonePipelineStages(s.state.PipelineStages)
}

func (s *Store) GovernanceFlags() []models.GovernanceFlag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneSlice(s.state.GovernanceFlags)
}

// TribeGraph returns the graph and whether one has been set yet.
func (s *Store) TribeGraph() (models.TribeGraph, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.TribeGraph == nil {
		return models.TribeGraph{}, false
	}
	return s.state.TribeGraph.Clone(), true
}

func (s *Store) Recommendations() []models.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneSlice(s.state.Recommendations)
}

func (s *Store) Providers() []models.ProviderScore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneSlice(s.state.Providers)
}

func (s *Store) AdvisorSignals() []models.AdvisorSignal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneAdvisorSignals(s.state.AdvisorSignals)
}

func (s *Store) Reviews() []models.ReviewEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneReviews(s.state.Reviews)
}

func (s *Store) Certificates() []models.CertificateMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneSlice(s.state.Certificates)
}

// SetUser replaces the identity. An empty csrfToken clears the token.
func (s *Store) SetUser(ctx context.Context, userID string, role models.Role, csrfToken string) {
	s.mutate(ctx, "set_user", func(st *models.State) {
		st.UserID = userID
		st.UserRole = role
		st.CSRFToken = csrfToken
	})
}

func (s *Store) SetPipelineStages(ctx context.Context, stages []models.PipelineStage) {
	stages = models.ClonePipelineStages(stages)
	s.mutate(ctx, "set_pipeline_stages", func(st *models.State) {
		st.PipelineStages = stages
	})
}

func (s *Store) SetGovernanceFlags(ctx context.Context, flags []models.GovernanceFlag) {
	flags = models.CloneSlice(flags)
	s.mutate(ctx, "set_governance_flags", func(st *models.State) {
		st.GovernanceFlags = flags
	})
}

func (s *Store) SetTribeGraph(ctx context.Context, graph models.TribeGraph) {
	g := graph.Clone()
	s.mutate(ctx, "set_tribe_graph", func(st *models.State) {
		st.TribeGraph = &g
	})
}

func (s *Store) SetRecommendations(ctx context.Context, recs []models.Recommendation) {
	recs = models.CloneSlice(recs)
	s.mutate(ctx, "set_recommendations", func(st *models.State) {
		st.Recommendations = recs
	})
}

func (s *Store) SetProviders(ctx context.Context, providers []models.ProviderScore) {
	providers = models.CloneSlice(providers)
	s.mutate(ctx, "set_providers", func(st *models.State) {
		st.Providers = providers
	})
}

func (s *Store) SetAdvisorSignals(ctx context.Context, signals []models.AdvisorSignal) {
	signals = models.CloneAdvisorSignals(signals)
	s.mutate(ctx, "set_advisor_signals", func(st *models.State) {
		st.AdvisorSignals = signals
	})
}

// SetReviews replaces the whole review list.
func (s *Store) SetReviews(ctx context.Context, reviews []models.ReviewEntry) {
	reviews = models.CloneReviews(reviews)
	s.mutate(ctx, "set_reviews", func(st *models.State) {
		st.Reviews = reviews
	})
}

// AddReview prepends entry. Entries with an id already present are kept.
func (s *Store) AddReview(ctx context.Context, entry models.ReviewEntry) {
	entry = entry.Clone()
	s.mutate(ctx, "add_review", func(st *models.State) {
		reviews := make([]models.ReviewEntry, 0, len(st.Reviews)+1)
		reviews = append(reviews, entry)
		st.Reviews = append(reviews, st.Reviews...)
	})
}

func (s *Store) SetCertificates(ctx context.Context, certs []models.CertificateMeta) {
	certs = models.CloneSlice(certs)
	s.mutate(ctx, "set_certificates", func(st *models.State) {
		st.Certificates = certs
	})
}
