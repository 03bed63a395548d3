package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cosurvival/internal/bootstrap"
	"cosurvival/internal/dashboard/metrics"
	"cosurvival/internal/dashboard/models"
	"cosurvival/internal/dashboard/store"
	"cosurvival/internal/querycache"
	dErrors "cosurvival/pkg/domain-errors"
	pstrings "cosurvival/pkg/platform/strings"
	"cosurvival/pkg/requestcontext"
)

// Remote is the backend API the service pulls sections from.
type Remote interface {
	FetchAdvisorSignals(ctx context.Context) ([]models.AdvisorSignal, error)
	FetchProviders(ctx context.Context) ([]models.ProviderScore, error)
	FetchTribeGraph(ctx context.Context) (models.TribeGraph, error)
	FetchRecommendations(ctx context.Context, userID string) ([]models.Recommendation, error)
	SubmitReview(ctx context.Context, in models.ReviewInput) (models.ReviewEntry, error)
}

// BootstrapLoader yields the one-time bootstrap payload.
type BootstrapLoader interface {
	Load() bootstrap.Payload
}

// Section names, also used as the first segment of their cache keys.
const (
	SectionAdvisorSignals  = "advisor-signals"
	SectionProviders       = "recon-providers"
	SectionTribeGraph      = "tribe-graph"
	SectionRecommendations = "teacher-recs"
)

// Stale times per section. Recommendations refresh on every sync.
const (
	AdvisorSignalsStaleTime = 60 * time.Second
	ProvidersStaleTime      = 120 * time.Second
	TribeGraphStaleTime     = 120 * time.Second
)

// RecommendationsKey is the cache key for userID's recommendations.
func RecommendationsKey(userID string) querycache.Key {
	return querycache.Key{SectionRecommendations, userID}
}

// Service keeps the store in step with the backend: cache-backed section
// fetches land in the store as they complete, and local review submissions
// are added to the store once the backend accepts them.
type Service struct {
	remote  Remote
	cache   *querycache.Cache
	store   *store.Store
	loader  BootstrapLoader
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	watches map[string]func()
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBootstrapLoader replaces the process-wide bootstrap loader.
func WithBootstrapLoader(loader BootstrapLoader) Option {
	return func(s *Service) {
		s.loader = loader
	}
}

// WithClock replaces time.Now for locally stamped reviews.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New wires a service. The cache and store are shared with other consumers
// and are not closed by the service.
func New(remote Remote, cache *querycache.Cache, st *store.Store, opts ...Option) (*Service, error) {
	if remote == nil {
		return nil, errors.New("remote client is required")
	}
	if cache == nil {
		return nil, errors.New("query cache is required")
	}
	if st == nil {
		return nil, errors.New("store is required")
	}
	s := &Service{
		remote:  remote,
		cache:   cache,
		store:   st,
		loader:  bootstrap.Default(),
		logger:  slog.Default(),
		now:     time.Now,
		watches: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close drops the service's cache subscriptions. In-flight refreshes still
// complete and update the cache, but no longer reach the store.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, unsubscribe := range s.watches {
		unsubscribe()
		delete(s.watches, k)
	}
}

// Bootstrap applies the bootstrap payload to the store. The identity always
// comes from the payload, falling back to the default identity per missing
// field, so a hydrated user never survives a payload without one. The default
// pipeline stages are seeded when the store has none.
func (s *Service) Bootstrap(ctx context.Context) models.Identity {
	payload := s.loader.Load()

	id := payload.Identity(models.DefaultIdentity())
	s.store.SetUser(ctx, id.UserID, id.UserRole, id.CSRFToken)
	s.logger.InfoContext(ctx, "identity bootstrapped",
		"user_id", id.UserID,
		"user_role", id.UserRole,
		"has_csrf_token", id.CSRFToken != "",
		"empty_payload", payload.IsEmpty(),
	)

	if len(s.store.PipelineStages()) == 0 {
		s.store.SetPipelineStages(ctx, models.DefaultPipelineStages(payload.LastPipelineRun))
	}
	return s.store.Identity()
}

// section binds a cache key to its fetch and the store setter it feeds.
type section[T any] struct {
	name      string
	key       querycache.Key
	staleTime time.Duration
	enabled   bool
	fetch     func(ctx context.Context) (T, error)
	apply     func(ctx context.Context, v T)
}

func (sec section[T]) producer() querycache.Producer {
	return func(ctx context.Context) (any, error) {
		return sec.fetch(ctx)
	}
}

func (sec section[T]) runOptions() []querycache.RunOption {
	return []querycache.RunOption{
		querycache.StaleTime(sec.staleTime),
		querycache.Enabled(sec.enabled),
	}
}

// watch makes sure completed refreshes of sec reach the store. It is
// registered before the first Run of a key, so no result is missed.
func watch[T any](s *Service, sec section[T]) {
	k := sec.key.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watches[k]; ok {
		return
	}
	s.watches[k] = s.cache.Subscribe(sec.key, func(r querycache.Result) {
		ctx := context.Background()
		if r.Err != nil {
			s.metrics.IncrementSectionSync(sec.name, false)
			s.logger.WarnContext(ctx, "section sync failed",
				"section", sec.name,
				"serving_stale", r.HasData,
				"error", r.Err,
			)
			return
		}
		v, ok := querycache.Typed[T](r)
		if !ok {
			return
		}
		s.metrics.IncrementSectionSync(sec.name, true)
		sec.apply(ctx, v)
	})
}

func run[T any](s *Service, sec section[T]) querycache.Result {
	if sec.enabled {
		watch(s, sec)
	}
	return s.cache.Run(sec.key, sec.producer(), sec.runOptions()...)
}

func fetch[T any](ctx context.Context, s *Service, sec section[T]) querycache.Result {
	if sec.enabled {
		watch(s, sec)
	}
	return s.cache.Fetch(ctx, sec.key, sec.producer(), sec.runOptions()...)
}

func (s *Service) advisorSection() section[[]models.AdvisorSignal] {
	return section[[]models.AdvisorSignal]{
		name:      SectionAdvisorSignals,
		key:       querycache.Key{SectionAdvisorSignals},
		staleTime: AdvisorSignalsStaleTime,
		enabled:   true,
		fetch:     s.remote.FetchAdvisorSignals,
		apply:     s.store.SetAdvisorSignals,
	}
}

func (s *Service) providersSection() section[[]models.ProviderScore] {
	return section[[]models.ProviderScore]{
		name:      SectionProviders,
		key:       querycache.Key{SectionProviders},
		staleTime: ProvidersStaleTime,
		enabled:   true,
		fetch:     s.remote.FetchProviders,
		apply:     s.store.SetProviders,
	}
}

func (s *Service) tribeSection() section[models.TribeGraph] {
	return section[models.TribeGraph]{
		name:      SectionTribeGraph,
		key:       querycache.Key{SectionTribeGraph},
		staleTime: TribeGraphStaleTime,
		enabled:   true,
		fetch:     s.remote.FetchTribeGraph,
		apply:     s.store.SetTribeGraph,
	}
}

// recommendationsSection is enabled only once a real user is known. Results
// for a user who is no longer current are dropped.
func (s *Service) recommendationsSection() section[[]models.Recommendation] {
	id := s.store.Identity()
	userID := id.UserID
	return section[[]models.Recommendation]{
		name:    SectionRecommendations,
		key:     RecommendationsKey(userID),
		enabled: !id.IsAnonymous(),
		fetch: func(ctx context.Context) ([]models.Recommendation, error) {
			return s.remote.FetchRecommendations(ctx, userID)
		},
		apply: func(ctx context.Context, recs []models.Recommendation) {
			if s.store.Identity().UserID != userID {
				return
			}
			s.store.SetRecommendations(ctx, recs)
		},
	}
}

// SyncAdvisorSignals starts or joins a refresh of the advisor section when
// its cached value is older than AdvisorSignalsStaleTime. It never blocks.
func (s *Service) SyncAdvisorSignals() querycache.Result {
	return run(s, s.advisorSection())
}

func (s *Service) SyncProviders() querycache.Result {
	return run(s, s.providersSection())
}

func (s *Service) SyncTribeGraph() querycache.Result {
	return run(s, s.tribeSection())
}

// SyncRecommendations is idle while the identity is anonymous.
func (s *Service) SyncRecommendations() querycache.Result {
	return run(s, s.recommendationsSection())
}

// SyncAll refreshes every section concurrently and waits for all of them.
// Sections that fail keep their previous store value; the first failure is
// returned. Cancelling ctx stops the wait, not the refreshes.
func (s *Service) SyncAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return sectionErr(SectionAdvisorSignals, fetch(ctx, s, s.advisorSection()))
	})
	g.Go(func() error {
		return sectionErr(SectionProviders, fetch(ctx, s, s.providersSection()))
	})
	g.Go(func() error {
		return sectionErr(SectionTribeGraph, fetch(ctx, s, s.tribeSection()))
	})
	g.Go(func() error {
		return sectionErr(SectionRecommendations, fetch(ctx, s, s.recommendationsSection()))
	})
	return g.Wait()
}

func sectionErr(name string, r querycache.Result) error {
	if r.Err == nil {
		return nil
	}
	return fmt.Errorf("sync %s: %w", name, r.Err)
}

// SubmitReviewRequest is a review as entered by the user. HighlightsText is
// a comma separated alternative to Highlights; both are merged.
type SubmitReviewRequest struct {
	Author         string
	Lens           string
	Summary        string
	Highlights     []string
	HighlightsText string
}

// SubmitReview validates req, sends it to the backend and prepends the
// accepted entry to the store. Invalid input is rejected before any network
// call and leaves the store untouched.
func (s *Service) SubmitReview(ctx context.Context, req SubmitReviewRequest) (models.ReviewEntry, error) {
	id := s.store.Identity()
	in := models.ReviewInput{
		Author:     req.Author,
		Lens:       models.Lens(req.Lens),
		Summary:    req.Summary,
		Highlights: append(append([]string{}, req.Highlights...), pstrings.SplitList(req.HighlightsText)...),
	}
	if in.Author == "" {
		in.Author = id.UserID
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		s.metrics.IncrementReviewSubmission("rejected")
		return models.ReviewEntry{}, err
	}

	entry, err := s.remote.SubmitReview(ctx, in)
	if err != nil {
		s.metrics.IncrementReviewSubmission("failed")
		s.logger.ErrorContext(ctx, "review submission failed",
			"user_id", id.UserID,
			"lens", in.Lens,
			"error", err,
		)
		return models.ReviewEntry{}, err
	}
	entry = s.completeEntry(ctx, entry, in)

	s.store.AddReview(ctx, entry)
	s.metrics.IncrementReviewSubmission("accepted")
	s.logger.InfoContext(ctx, "review submitted",
		"user_id", id.UserID,
		"review_id", entry.ID,
		"lens", entry.Lens,
	)
	return entry, nil
}

// completeEntry fills fields the backend left out from the submitted input.
// Locally stamped reviews take the request arrival time when there is one.
func (s *Service) completeEntry(ctx context.Context, entry models.ReviewEntry, in models.ReviewInput) models.ReviewEntry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		at, ok := requestcontext.ReceivedAt(ctx)
		if !ok {
			at = s.now()
		}
		entry.CreatedAt = at.UTC()
	}
	if entry.Author == "" {
		entry.Author = in.Author
	}
	if entry.Lens == "" {
		entry.Lens = in.Lens
	}
	if entry.Summary == "" {
		entry.Summary = in.Summary
	}
	if len(entry.Highlights) == 0 {
		entry.Highlights = in.Highlights
	}
	return entry
}

func (s *Service) requireOperator() error {
	if !s.store.Identity().UserRole.CanOperate() {
		return dErrors.New(dErrors.CodeForbidden, "operator role required")
	}
	return nil
}

// SetPipelineStages replaces the pipeline section. Operators only.
func (s *Service) SetPipelineStages(ctx context.Context, stages []models.PipelineStage) error {
	if err := s.requireOperator(); err != nil {
		return err
	}
	for i, st := range stages {
		if st.ID == "" {
			return dErrors.Newf(dErrors.CodeInvalidArgument, "stage %d: id is required", i)
		}
		if !st.Status.Valid() {
			return dErrors.Newf(dErrors.CodeInvalidArgument, "stage %s: unknown status %q", st.ID, st.Status)
		}
	}
	s.store.SetPipelineStages(ctx, stages)
	s.metrics.IncrementOperatorUpdate("pipeline")
	return nil
}

// SetGovernanceFlags replaces the governance section. Operators only.
func (s *Service) SetGovernanceFlags(ctx context.Context, flags []models.GovernanceFlag) error {
	if err := s.requireOperator(); err != nil {
		return err
	}
	for i, f := range flags {
		if f.ID == "" {
			return dErrors.Newf(dErrors.CodeInvalidArgument, "flag %d: id is required", i)
		}
		if !f.Severity.Valid() {
			return dErrors.Newf(dErrors.CodeInvalidArgument, "flag %s: unknown severity %q", f.ID, f.Severity)
		}
	}
	s.store.SetGovernanceFlags(ctx, flags)
	s.metrics.IncrementOperatorUpdate("governance")
	return nil
}

// SetCertificates replaces the certificate list. Operators only.
func (s *Service) SetCertificates(ctx context.Context, certs []models.CertificateMeta) error {
	if err := s.requireOperator(); err != nil {
		return err
	}
	for i, c := range certs {
		if c.ID == "" {
			return dErrors.Newf(dErrors.CodeInvalidArgument, "certificate %d: id is required", i)
		}
	}
	s.store.SetCertificates(ctx, certs)
	s.metrics.IncrementOperatorUpdate("certificates")
	return nil
}

// Snapshot returns a copy of the whole dashboard state.
func (s *Service) Snapshot() models.State {
	return s.store.State()
}
