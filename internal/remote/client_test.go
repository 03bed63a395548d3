package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"cosurvival/internal/dashboard/models"
	dErrors "cosurvival/pkg/domain-errors"
)

type ClientSuite struct {
	suite.Suite
	router *chi.Mux
	server *httptest.Server
	client *Client
	token  string
	hits   atomic.Int32
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.hits.Store(0)
	s.token = ""
	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.hits.Add(1)
			next.ServeHTTP(w, r)
		})
	})
	s.server = httptest.NewServer(s.router)
	c, err := New(Config{BaseURL: s.server.URL + "/", Timeout: time.Second},
		WithTokenSource(func() string { return s.token }),
	)
	s.Require().NoError(err)
	s.client = c
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *ClientSuite) TestFetchProviders() {
	s.router.Get("/api/v1/recon/providers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"providers": []map[string]any{
				{"provider_id": "prov-101", "reliability": 0.992, "total_activities": 640, "error_count": 5, "grade": "A"},
			},
		})
	})

	providers, err := s.client.FetchProviders(context.Background())
	s.Require().NoError(err)
	s.Equal([]models.ProviderScore{{
		ProviderID: "prov-101", Reliability: 0.992, TotalActivities: 640, ErrorCount: 5, Grade: models.GradeA,
	}}, providers)
}

func (s *ClientSuite) TestFetchAdvisorSignalsAcceptsBareArray() {
	s.router.Get("/api/v1/advisor/signals", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{
			"id": "sig-1", "title": "Bridge at risk", "severity": "strong", "whyNow": "two mentors left",
			"evidence": []string{"e1"}, "confidence": 0.8, "alternatives": []string{"wait"},
		}})
	})

	signals, err := s.client.FetchAdvisorSignals(context.Background())
	s.Require().NoError(err)
	s.Require().Len(signals, 1)
	s.Equal(models.SeverityStrong, signals[0].Severity)
	s.Equal([]string{"e1"}, signals[0].Evidence)
}

func (s *ClientSuite) TestFetchTribeGraph() {
	s.router.Get("/api/v1/tribe/graph", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"nodes": []string{"u1", "u2"},
			"edges": []map[string]any{{"source": "u1", "target": "u2", "weight": 6}},
		})
	})

	g, err := s.client.FetchTribeGraph(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"u1", "u2"}, g.Nodes)
	s.Equal([]models.TribeEdge{{Source: "u1", Target: "u2", Weight: 6}}, g.Edges)
}

func (s *ClientSuite) TestFetchRecommendations() {
	s.Run("passes user id", func() {
		s.router.Get("/api/v1/teacher/recommendations", func(w http.ResponseWriter, r *http.Request) {
			s.Equal("alice", r.URL.Query().Get("user_id"))
			writeJSON(w, http.StatusOK, map[string]any{
				"recommendations": []map[string]any{{"skill": "role_admin_read", "frequency": 12}},
			})
		})
		recs, err := s.client.FetchRecommendations(context.Background(), "alice")
		s.Require().NoError(err)
		s.Equal([]models.Recommendation{{Skill: "role_admin_read", Frequency: 12}}, recs)
	})

	s.Run("empty user id never reaches the network", func() {
		before := s.hits.Load()
		_, err := s.client.FetchRecommendations(context.Background(), "  ")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		s.Equal(before, s.hits.Load())
	})
}

func (s *ClientSuite) TestSubmitReview() {
	s.router.Post("/api/v1/reviews", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("tok-123", r.Header.Get(CSRFHeader))
		var in models.ReviewInput
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusCreated, models.ReviewEntry{
			ID:         "rev-1",
			Author:     in.Author,
			Lens:       in.Lens,
			Summary:    in.Summary,
			CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Highlights: in.Highlights,
		})
	})
	s.token = "tok-123"

	entry, err := s.client.SubmitReview(context.Background(), models.ReviewInput{
		Author: "alice", Lens: models.LensTribe, Summary: "Bridge between teams",
	})
	s.Require().NoError(err)
	s.Equal("rev-1", entry.ID)
	s.Equal([]string{}, entry.Highlights)
	s.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), entry.CreatedAt.UTC())
}

func (s *ClientSuite) TestSubmitReviewWithoutTokenOmitsHeader() {
	s.router.Post("/api/v1/reviews", func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header[CSRFHeader]
		s.False(present)
		writeJSON(w, http.StatusCreated, models.ReviewEntry{ID: "rev-2"})
	})

	_, err := s.client.SubmitReview(context.Background(), models.ReviewInput{Author: "a", Lens: models.LensRecon, Summary: "0123456789"})
	s.Require().NoError(err)
}

func (s *ClientSuite) TestServerError() {
	s.router.Get("/api/v1/recon/providers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "rate_limit", "message": "slow down"})
	})

	_, err := s.client.FetchProviders(context.Background())
	var se *ServerError
	s.Require().True(errors.As(err, &se))
	s.Equal(http.StatusServiceUnavailable, se.Status)
	s.Equal("slow down", se.Message)
	s.True(dErrors.HasCode(err, dErrors.CodeServer))
	s.True(IsRetryable(err))
}

func (s *ClientSuite) TestClientErrorNotRetryable() {
	s.router.Get("/api/v1/teacher/recommendations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id required"})
	})

	_, err := s.client.FetchRecommendations(context.Background(), "alice")
	var se *ServerError
	s.Require().True(errors.As(err, &se))
	s.Equal("user_id required", se.Message)
	s.False(IsRetryable(err))
}

func (s *ClientSuite) TestMalformedBody() {
	s.router.Get("/api/v1/tribe/graph", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"nodes": [`))
	})

	_, err := s.client.FetchTribeGraph(context.Background())
	var se *ServerError
	s.Require().True(errors.As(err, &se))
	s.True(se.BadData)
	s.False(IsRetryable(err))
}

func (s *ClientSuite) TestNetworkError() {
	s.server.Close()

	_, err := s.client.FetchProviders(context.Background())
	var ne *NetworkError
	s.Require().True(errors.As(err, &ne))
	s.True(dErrors.HasCode(err, dErrors.CodeNetwork))
	s.True(IsRetryable(err))
}

func (s *ClientSuite) TestTimeout() {
	s.router.Get("/api/v1/recon/providers", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c, err := New(Config{BaseURL: s.server.URL, Timeout: 50 * time.Millisecond})
	s.Require().NoError(err)

	_, err = c.FetchProviders(context.Background())
	var ne *NetworkError
	s.Require().True(errors.As(err, &ne))
	s.True(ne.Timeout())
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
