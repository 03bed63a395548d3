//go:build integration

package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"cosurvival/pkg/testutil/containers"
)

func TestRedisBackend(t *testing.T) {
	rc := containers.StartRedis(t)

	suite.Run(t, &BackendSuite{newBackend: func() backend {
		rc.Reset(t)
		return NewRedis(rc.Client)
	}})
}

func TestRedisTTL(t *testing.T) {
	rc := containers.StartRedis(t)
	ctx := context.Background()

	r := NewRedis(rc.Client, WithKeyPrefix("test:"), WithTTL(time.Minute))
	require.NoError(t, r.Save(ctx, "cosurvival-store", []byte(`{}`)))

	ttl, err := rc.Client.TTL(ctx, "test:cosurvival-store").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, time.Minute)
}
