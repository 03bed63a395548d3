package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosurvival/internal/bootstrap"
	"cosurvival/internal/dashboard/models"
	"cosurvival/internal/dashboard/service"
	"cosurvival/internal/dashboard/snapshot"
	"cosurvival/internal/dashboard/store"
	"cosurvival/internal/platform/config"
	"cosurvival/internal/platform/logger"
	"cosurvival/internal/remote"
)

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("GET /api/v1/advisor/signals", func(w http.ResponseWriter, _ *http.Request) {
		write(w, map[string]any{"signals": []models.AdvisorSignal{{ID: "s1", Title: "rotate keys", Severity: models.SeverityStrong}}})
	})
	mux.HandleFunc("GET /api/v1/recon/providers", func(w http.ResponseWriter, _ *http.Request) {
		write(w, []models.ProviderScore{{ProviderID: "p1", Reliability: 0.99, Grade: models.GradeA}})
	})
	mux.HandleFunc("GET /api/v1/tribe/graph", func(w http.ResponseWriter, _ *http.Request) {
		write(w, models.TribeGraph{Nodes: []string{"a", "b"}, Edges: []models.TribeEdge{{Source: "a", Target: "b", Weight: 2}}})
	})
	mux.HandleFunc("GET /api/v1/teacher/recommendations", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{"recommendations": []models.Recommendation{{Skill: r.URL.Query().Get("user_id"), Frequency: 1}}})
	})
	mux.HandleFunc("POST /api/v1/reviews", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(remote.CSRFHeader) != "tok" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		var in models.ReviewInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		write(w, models.ReviewEntry{ID: "srv-1", Author: in.Author, Lens: in.Lens, Summary: in.Summary, Highlights: in.Highlights})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.Cache.MaxRetries = 0
	return cfg
}

func TestBuildWiresTheDashboard(t *testing.T) {
	srv := fakeBackend(t)
	snapshots := snapshot.NewMemory()
	loader := bootstrap.NewLoader(bootstrap.FromBytes([]byte(`{"currentUser":"alice","userRole":"operator","csrfToken":"tok"}`)))

	a, err := Build(context.Background(), testConfig(srv.URL), logger.Discard(),
		WithBootstrapLoader(loader),
		WithSnapshotStore(snapshots),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	id := a.Service.Bootstrap(context.Background())
	assert.Equal(t, "alice", id.UserID)

	require.NoError(t, a.Service.SyncAll(context.Background()))
	st := a.Service.Snapshot()
	assert.Len(t, st.AdvisorSignals, 1)
	assert.Len(t, st.Providers, 1)
	require.NotNil(t, st.TribeGraph)
	assert.Equal(t, []models.Recommendation{{Skill: "alice", Frequency: 1}}, st.Recommendations)

	entry, err := a.Service.SubmitReview(context.Background(), service.SubmitReviewRequest{
		Lens:    "tribe",
		Summary: "collaboration looks balanced",
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", entry.ID)
	assert.Equal(t, "alice", entry.Author)

	raw, err := snapshots.Load(context.Background(), store.SnapshotKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "srv-1")
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Snapshot.Backend = config.SnapshotFile

	_, err := Build(context.Background(), cfg, logger.Discard())
	require.Error(t, err)
}

func TestBuildOpensFileSnapshots(t *testing.T) {
	srv := fakeBackend(t)
	cfg := testConfig(srv.URL)
	cfg.Snapshot.Backend = config.SnapshotFile
	cfg.Snapshot.Path = t.TempDir()
	loader := bootstrap.NewLoader(bootstrap.FromBytes(nil))

	a, err := Build(context.Background(), cfg, logger.Discard(), WithBootstrapLoader(loader))
	require.NoError(t, err)
	a.Store.SetPipelineStages(context.Background(), models.DefaultPipelineStages(nil))
	require.NoError(t, a.Close())

	b, err := Build(context.Background(), cfg, logger.Discard(), WithBootstrapLoader(loader))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	assert.True(t, b.Store.Hydrated())
	assert.Len(t, b.Store.PipelineStages(), 4)
}

func TestBuildOpensBadgerSnapshots(t *testing.T) {
	srv := fakeBackend(t)
	cfg := testConfig(srv.URL)
	cfg.Snapshot.Backend = config.SnapshotBadger
	cfg.Snapshot.Path = t.TempDir()

	a, err := Build(context.Background(), cfg, logger.Discard(),
		WithBootstrapLoader(bootstrap.NewLoader(bootstrap.FromBytes(nil))))
	require.NoError(t, err)
	a.Store.SetUser(context.Background(), "bob", models.RoleConsumer, "")
	require.NoError(t, a.Close())

	b, err := Build(context.Background(), cfg, logger.Discard(),
		WithBootstrapLoader(bootstrap.NewLoader(bootstrap.FromBytes(nil))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	assert.Equal(t, "bob", b.Store.Identity().UserID)
}

func TestNewBootstrapLoaderPrefersFile(t *testing.T) {
	path := t.TempDir() + "/bootstrap.json"
	require.NoError(t, os.WriteFile(path, []byte(`{"currentUser":"dana"}`), 0o600))
	t.Setenv("COSURVIVAL_TEST_BOOTSTRAP", `{"currentUser":"erin"}`)

	p := NewBootstrapLoader(config.Bootstrap{File: path, Env: "COSURVIVAL_TEST_BOOTSTRAP"}, logger.Discard()).Load()
	assert.Equal(t, "dana", p.CurrentUser)

	p = NewBootstrapLoader(config.Bootstrap{Env: "COSURVIVAL_TEST_BOOTSTRAP"}, logger.Discard()).Load()
	assert.Equal(t, "erin", p.CurrentUser)
}
