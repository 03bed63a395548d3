package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cosurvival/internal/dashboard/handler/mocks"
	"cosurvival/internal/dashboard/models"
	"cosurvival/internal/dashboard/service"
	"cosurvival/internal/platform/logger"
	dErrors "cosurvival/pkg/domain-errors"
	"cosurvival/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)

	r := chi.NewRouter()
	New(s.service, logger.Discard()).Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) state() models.State {
	st := models.InitialState()
	st.UserID = "u-1"
	st.UserRole = models.RoleOperator
	st.GovernanceFlags = []models.GovernanceFlag{
		{ID: "g1", Title: "low", Severity: models.SeverityWeak},
		{ID: "g2", Title: "high", Severity: models.SeverityCritical},
		{ID: "g3", Title: "mid", Severity: models.SeverityStrong},
	}
	st.Reviews = []models.ReviewEntry{
		{ID: "r2", Lens: models.LensRecon, Summary: "second review"},
		{ID: "r1", Lens: models.LensTribe, Summary: "first review"},
	}
	st.Recommendations = []models.Recommendation{{Skill: "go", Frequency: 3}}
	return st
}

func (s *HandlerSuite) get(path string) *http.Request {
	return testutil.NewJSONRequest(s.T(), http.MethodGet, path, nil)
}

func (s *HandlerSuite) TestState() {
	st := s.state()
	s.service.EXPECT().Snapshot().Return(st)

	rr := testutil.DoRequest(s.router, s.get("/dashboard/state"))

	s.Equal(http.StatusOK, rr.Code)
	got := testutil.UnmarshalResponse[models.State](s.T(), rr)
	s.Equal("u-1", got.UserID)
	s.Len(got.GovernanceFlags, 3)
}

func (s *HandlerSuite) TestGovernance() {
	s.Run("all flags without a filter", func() {
		s.service.EXPECT().Snapshot().Return(s.state())
		rr := testutil.DoRequest(s.router, s.get("/dashboard/governance"))
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[map[string][]models.GovernanceFlag](s.T(), rr)
		s.Len(body["flags"], 3)
	})

	s.Run("min_severity keeps that severity or worse", func() {
		s.service.EXPECT().Snapshot().Return(s.state())
		rr := testutil.DoRequest(s.router, s.get("/dashboard/governance?min_severity=Strong"))
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[map[string][]models.GovernanceFlag](s.T(), rr)
		s.Require().Len(body["flags"], 2)
		s.Equal("g2", body["flags"][0].ID)
		s.Equal("g3", body["flags"][1].ID)
	})

	s.Run("unknown severity is rejected", func() {
		s.service.EXPECT().Snapshot().Return(s.state())
		rr := testutil.DoRequest(s.router, s.get("/dashboard/governance?min_severity=extreme"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidArgument))
	})
}

func (s *HandlerSuite) TestReviewsFilteredByLens() {
	s.service.EXPECT().Snapshot().Return(s.state())

	rr := testutil.DoRequest(s.router, s.get("/dashboard/reviews?lens=tribe"))

	s.Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[map[string][]models.ReviewEntry](s.T(), rr)
	s.Require().Len(body["reviews"], 1)
	s.Equal("r1", body["reviews"][0].ID)
}

func (s *HandlerSuite) TestTribe() {
	s.Run("no graph yet", func() {
		s.service.EXPECT().Snapshot().Return(models.InitialState())
		rr := testutil.DoRequest(s.router, s.get("/dashboard/tribe"))
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[TribeResponse](s.T(), rr)
		s.Nil(body.Graph)
		s.Empty(body.Issues)
	})

	s.Run("graph with derived figures", func() {
		st := models.InitialState()
		st.TribeGraph = &models.TribeGraph{
			Nodes: []string{"a", "b"},
			Edges: []models.TribeEdge{{Source: "a", Target: "b", Weight: 1}},
		}
		s.service.EXPECT().Snapshot().Return(st)
		rr := testutil.DoRequest(s.router, s.get("/dashboard/tribe"))
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[TribeResponse](s.T(), rr)
		s.Require().NotNil(body.Graph)
		s.Equal(st.TribeGraph.Density(), body.Density)
	})
}

func (s *HandlerSuite) TestSubmitReview() {
	s.Run("accepted review returns 201", func() {
		created := models.ReviewEntry{
			ID:        "r-9",
			Author:    "u-1",
			Lens:      models.LensTribe,
			Summary:   "tribe graph looks healthy",
			CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		}
		s.service.EXPECT().
			SubmitReview(gomock.Any(), service.SubmitReviewRequest{
				Lens:           "tribe",
				Summary:        "tribe graph looks healthy",
				HighlightsText: "a, b",
			}).
			Return(created, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/dashboard/reviews", map[string]any{
			"lens":           "tribe",
			"summary":        "tribe graph looks healthy",
			"highlightsText": "a, b",
		})
		rr := testutil.DoRequest(s.router, testutil.WithRequestID(req, "req-1"))

		s.Equal(http.StatusCreated, rr.Code)
		got := testutil.UnmarshalResponse[models.ReviewEntry](s.T(), rr)
		s.Equal("r-9", got.ID)
	})

	s.Run("validation failure from the service", func() {
		s.service.EXPECT().
			SubmitReview(gomock.Any(), gomock.Any()).
			Return(models.ReviewEntry{}, dErrors.New(dErrors.CodeValidation, "summary must be at least 10 characters"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/dashboard/reviews", map[string]any{
			"lens":    "tribe",
			"summary": "too short",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("remote failure is a bad gateway", func() {
		s.service.EXPECT().
			SubmitReview(gomock.Any(), gomock.Any()).
			Return(models.ReviewEntry{}, dErrors.Wrap(errors.New("connection refused"), dErrors.CodeNetwork, "submit review"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/dashboard/reviews", map[string]any{
			"lens":    "tribe",
			"summary": "tribe graph looks healthy",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadGateway, string(dErrors.CodeNetwork))
		body := testutil.UnmarshalResponse[map[string]string](s.T(), rr)
		s.Empty(body["error_description"])
	})

	s.Run("malformed body never reaches the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRawRequest(s.T(), http.MethodPost, "/dashboard/reviews", "{not json"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("empty body never reaches the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/dashboard/reviews", map[string]any{}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}

func (s *HandlerSuite) TestSetPipeline() {
	stages := models.DefaultPipelineStages(nil)

	s.Run("stored stages are returned", func() {
		st := s.state()
		st.PipelineStages = stages
		s.service.EXPECT().SetPipelineStages(gomock.Any(), stages).Return(nil)
		s.service.EXPECT().Snapshot().Return(st)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/dashboard/pipeline", map[string]any{"stages": stages}))

		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[map[string][]models.PipelineStage](s.T(), rr)
		s.Len(body["stages"], len(stages))
	})

	s.Run("viewer is forbidden", func() {
		s.service.EXPECT().
			SetPipelineStages(gomock.Any(), gomock.Any()).
			Return(dErrors.New(dErrors.CodeForbidden, "operator role required"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/dashboard/pipeline", map[string]any{"stages": stages}))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("missing stages", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/dashboard/pipeline", map[string]any{}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}

func (s *HandlerSuite) TestSetGovernanceAndCertificates() {
	flags := []models.GovernanceFlag{{ID: "g1", Title: "pii", Description: "pii column", Severity: models.SeverityCritical}}
	certs := []models.CertificateMeta{{ID: "c1", Title: "run", IssuedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Hash: "abc"}}

	st := s.state()
	st.GovernanceFlags = flags
	st.Certificates = certs

	s.service.EXPECT().SetGovernanceFlags(gomock.Any(), flags).Return(nil)
	s.service.EXPECT().SetCertificates(gomock.Any(), certs).Return(nil)
	s.service.EXPECT().Snapshot().Return(st).Times(2)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/dashboard/governance", map[string]any{"flags": flags}))
	s.Equal(http.StatusOK, rr.Code)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/dashboard/certificates", map[string]any{"certificates": certs}))
	s.Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[map[string][]models.CertificateMeta](s.T(), rr)
	s.Equal(certs, body["certificates"])
}

func (s *HandlerSuite) TestSync() {
	s.Run("returns the refreshed state", func() {
		s.service.EXPECT().SyncAll(gomock.Any()).Return(nil)
		s.service.EXPECT().Snapshot().Return(s.state())

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/dashboard/sync", nil))

		s.Equal(http.StatusOK, rr.Code)
		got := testutil.UnmarshalResponse[models.State](s.T(), rr)
		s.Equal([]models.Recommendation{{Skill: "go", Frequency: 3}}, got.Recommendations)
	})

	s.Run("server failure is reported", func() {
		s.service.EXPECT().SyncAll(gomock.Any()).Return(dErrors.New(dErrors.CodeServer, "backend returned 503"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/dashboard/sync", nil))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadGateway, string(dErrors.CodeServer))
	})
}

func (s *HandlerSuite) TestMutationMiddlewareWrapsOnlyWrites() {
	var seen []string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.Method+" "+r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
	r := chi.NewRouter()
	New(s.service, logger.Discard(), WithMutationMiddleware(mw)).Register(r)

	s.service.EXPECT().Snapshot().Return(s.state()).Times(2)
	s.service.EXPECT().SyncAll(gomock.Any()).Return(nil)

	testutil.DoRequest(r, s.get("/dashboard/state"))
	testutil.DoRequest(r, testutil.NewJSONRequest(s.T(), http.MethodPost, "/dashboard/sync", nil))

	s.Equal([]string{"POST /dashboard/sync"}, seen)
}
