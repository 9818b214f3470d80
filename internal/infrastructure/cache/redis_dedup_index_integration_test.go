//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/cache"
	"github.com/jhoicas/conciliador-ubl/pkg/config"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("requiere Docker")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client, err := cache.NewRedisClient(ctx, config.RedisConfig{Addr: opts.Addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisDedupIndex(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	factory := cache.NewRedisDedupIndexFactory(client, "")

	_, err := factory.Open(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidPartition)

	idx, err := factory.Open(ctx, "900123456")
	require.NoError(t, err)
	assert.Equal(t, "conciliador:dedup:900123456", idx.(*cache.RedisDedupIndex).Key())

	_, found, err := idx.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, idx.Append(ctx, "abc", "factura.pdf"))
	require.NoError(t, idx.Append(ctx, "abc", "segunda.pdf"))

	name, found, err := idx.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "factura.pdf", name)

	other, err := factory.Open(ctx, "800111222")
	require.NoError(t, err)
	_, found, err = other.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisDedupIndexFactory_Lock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	a := cache.NewRedisDedupIndexFactory(client, "")
	b := cache.NewRedisDedupIndexFactory(client, "")

	_, err := a.Lock(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidPartition)

	unlock, err := a.Lock(ctx, "900123456")
	require.NoError(t, err)
	ttl, err := client.PTTL(ctx, a.LockKey("900123456")).Result()
	require.NoError(t, err)
	assert.Greater(t, int64(ttl), int64(0), "el bloqueo expira solo")

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	_, err = b.Lock(waitCtx, "900123456")
	cancel()
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlockOther, err := b.Lock(ctx, "800111222")
	require.NoError(t, err, "otra partición no espera")
	unlockOther()

	unlock()
	unlockB, err := b.Lock(ctx, "900123456")
	require.NoError(t, err)
	unlockB()

	// Bloqueo expirado y tomado por otro: el unlock tardío no lo borra.
	late, err := a.Lock(ctx, "700000001")
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, a.LockKey("700000001"), "otro-token", time.Minute).Err())
	late()
	owner, err := client.Get(ctx, a.LockKey("700000001")).Result()
	require.NoError(t, err)
	assert.Equal(t, "otro-token", owner)
}
