package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cosurvival/internal/dashboard/models"
	"cosurvival/internal/dashboard/service"
	dErrors "cosurvival/pkg/domain-errors"
	"cosurvival/pkg/platform/httputil"
	"cosurvival/pkg/requestcontext"
)

// Service defines the dashboard operations the handler exposes.
type Service interface {
	Snapshot() models.State
	SubmitReview(ctx context.Context, req service.SubmitReviewRequest) (models.ReviewEntry, error)
	SetPipelineStages(ctx context.Context, stages []models.PipelineStage) error
	SetGovernanceFlags(ctx context.Context, flags []models.GovernanceFlag) error
	SetCertificates(ctx context.Context, certs []models.CertificateMeta) error
	SyncAll(ctx context.Context) error
}

// Handler serves the dashboard sections to the front end.
type Handler struct {
	service   Service
	logger    *slog.Logger
	mutations []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithMutationMiddleware wraps only the routes that change state or call the
// upstream API (POST and PUT).
func WithMutationMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.mutations = append(h.mutations, mw...)
	}
}

// New constructs a dashboard handler.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts dashboard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/state", h.HandleState)
		r.Get("/pipeline", h.HandlePipeline)
		r.Get("/governance", h.HandleGovernance)
		r.Get("/tribe", h.HandleTribe)
		r.Get("/recommendations", h.HandleRecommendations)
		r.Get("/providers", h.HandleProviders)
		r.Get("/advisor", h.HandleAdvisor)
		r.Get("/reviews", h.HandleReviews)
		r.Get("/certificates", h.HandleCertificates)

		r.Group(func(r chi.Router) {
			r.Use(h.mutations...)
			r.Put("/pipeline", h.HandleSetPipeline)
			r.Put("/governance", h.HandleSetGovernance)
			r.Put("/certificates", h.HandleSetCertificates)
			r.Post("/reviews", h.HandleSubmitReview)
			r.Post("/sync", h.HandleSync)
		})
	})
}

// HandleState handles GET /dashboard/state.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) HandlePipeline(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"stages": h.service.Snapshot().PipelineStages})
}

// HandleGovernance handles GET /dashboard/governance. ?min_severity=
// restricts the flags to that severity or worse.
func (h *Handler) HandleGovernance(w http.ResponseWriter, r *http.Request) {
	flags := h.service.Snapshot().GovernanceFlags
	if raw := r.URL.Query().Get("min_severity"); raw != "" {
		minSeverity, err := models.ParseSeverity(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filtered := make([]models.GovernanceFlag, 0, len(flags))
		for _, f := range flags {
			if f.Severity.AtLeast(minSeverity) {
				filtered = append(filtered, f)
			}
		}
		flags = filtered
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"flags": flags})
}

func (h *Handler) HandleTribe(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toTribeResponse(h.service.Snapshot().TribeGraph))
}

func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	st := h.service.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"userId":          st.UserID,
		"recommendations": st.Recommendations,
	})
}

func (h *Handler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"providers": h.service.Snapshot().Providers})
}

func (h *Handler) HandleAdvisor(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"signals": h.service.Snapshot().AdvisorSignals})
}

// HandleReviews handles GET /dashboard/reviews, newest first. ?lens= filters
// by lens.
func (h *Handler) HandleReviews(w http.ResponseWriter, r *http.Request) {
	reviews := h.service.Snapshot().Reviews
	if lens := models.Lens(r.URL.Query().Get("lens")); lens != "" {
		filtered := make([]models.ReviewEntry, 0, len(reviews))
		for _, rv := range reviews {
			if rv.Lens == lens {
				filtered = append(filtered, rv)
			}
		}
		reviews = filtered
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (h *Handler) HandleCertificates(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"certificates": h.service.Snapshot().Certificates})
}

// HandleSubmitReview handles POST /dashboard/reviews.
func (h *Handler) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[SubmitReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.SubmitReview(ctx, req.toService())
	if err != nil {
		h.logFailure(ctx, "review submission failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "review submitted",
		"request_id", requestID,
		"review_id", entry.ID,
		"lens", entry.Lens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

// HandleSetPipeline handles PUT /dashboard/pipeline.
func (h *Handler) HandleSetPipeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PipelineRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.SetPipelineStages(ctx, req.Stages); err != nil {
		h.logFailure(ctx, "pipeline update failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"stages": h.service.Snapshot().PipelineStages})
}

// HandleSetGovernance handles PUT /dashboard/governance.
func (h *Handler) HandleSetGovernance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[GovernanceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.SetGovernanceFlags(ctx, req.Flags); err != nil {
		h.logFailure(ctx, "governance update failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"flags": h.service.Snapshot().GovernanceFlags})
}

// HandleSetCertificates handles PUT /dashboard/certificates.
func (h *Handler) HandleSetCertificates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CertificatesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.SetCertificates(ctx, req.Certificates); err != nil {
		h.logFailure(ctx, "certificates update failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"certificates": h.service.Snapshot().Certificates})
}

// HandleSync handles POST /dashboard/sync: refresh every remote section and
// return the resulting state. Sections that failed keep their last value.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	if err := h.service.SyncAll(ctx); err != nil {
		h.logFailure(ctx, "dashboard sync failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "dashboard synced",
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	level := slog.LevelError
	if dErrors.IsClientError(err) {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"code", dErrors.CodeOf(err),
		"error", err,
	)
}
