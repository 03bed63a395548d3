//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cosurvival/internal/platform/config"
	"cosurvival/pkg/testutil/containers"
)

func TestConnectPingsContainer(t *testing.T) {
	rc := containers.StartRedis(t)

	c, err := Connect(context.Background(), config.RedisConfig{URL: rc.URL, PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.Equal(t, "PONG", c.Ping(context.Background()).Val())
}
