package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("COSURVIVAL_CONFIG", "")
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, SnapshotMemory, cfg.Snapshot.Backend)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.Cache.MaxRetries)
}

func TestYAMLOverlayThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cosurvival.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
api:
  base_url: "http://backend:5000"
  timeout: 2s
snapshot:
  backend: badger
  path: /var/lib/cosurvival
log:
  level: debug
rate_limit:
  requests: 5
`), 0o600))

	t.Setenv("COSURVIVAL_CONFIG", path)
	t.Setenv("COSURVIVAL_LOG_LEVEL", "warn")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://backend:5000", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, SnapshotBadger, cfg.Snapshot.Backend)
	assert.Equal(t, "warn", cfg.Log.Level)
	// untouched sections keep their defaults
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, cfg.Cache.RetryCap)
	assert.Equal(t, RateLimit{Requests: 5, Window: time.Minute}, cfg.RateLimit)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"COSURVIVAL_API_TIMEOUT": "soon"}},
		{"bad retries", map[string]string{"COSURVIVAL_CACHE_MAX_RETRIES": "many"}},
		{"unknown backend", map[string]string{"COSURVIVAL_SNAPSHOT_BACKEND": "s3"}},
		{"file without path", map[string]string{"COSURVIVAL_SNAPSHOT_BACKEND": "file"}},
		{"redis without url", map[string]string{"COSURVIVAL_SNAPSHOT_BACKEND": "redis"}},
		{"bad rate limit", map[string]string{"COSURVIVAL_RATE_LIMIT": "lots"}},
		{"missing config file", map[string]string{"COSURVIVAL_CONFIG": "/does/not/exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COSURVIVAL_CONFIG", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
