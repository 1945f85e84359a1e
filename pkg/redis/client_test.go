package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/closingdesk/commission-backend/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return NewFromClient(raw), mr
}

func TestIdempotencyKeyRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	key := client.IdempotencyKey("create-enhanced-payout", "abc")
	require.Equal(t, "commission:idempotency:create-enhanced-payout:abc", key)

	ok, err := client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	val, err := client.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "pending", val)

	require.NoError(t, client.Set(ctx, key, "settled", time.Hour))
	val, err = client.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "settled", val)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	require.ErrorIs(t, err, redis.Nil)
}

func TestAcquireLockIsExclusive(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	lock, err := client.AcquireLock(ctx, "payout-create", "txn-1", 10*time.Second)
	require.NoError(t, err)
	require.Equal(t, "commission:lock:payout-create:txn-1", lock.Key())
	require.True(t, mr.Exists(lock.Key()))

	_, err = client.AcquireLock(ctx, "payout-create", "txn-1", 10*time.Second)
	require.True(t, errors.Is(err, ErrLockHeld))

	other, err := client.AcquireLock(ctx, "payout-create", "txn-2", 10*time.Second)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lock.Release(ctx))
	require.False(t, mr.Exists(lock.Key()))

	again, err := client.AcquireLock(ctx, "payout-create", "txn-1", 10*time.Second)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestReleaseLockAfterExpiryFails(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	lock, err := client.AcquireLock(ctx, "payout-create", "txn-1", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	thief, err := client.AcquireLock(ctx, "payout-create", "txn-1", time.Minute)
	require.NoError(t, err)

	require.Error(t, lock.Release(ctx))
	require.True(t, mr.Exists(thief.Key()))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	require.Equal(t, "localhost:6379", opts.Addr)
	require.Equal(t, 7, opts.PoolSize)
	require.Equal(t, time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6380/2"})
	require.NoError(t, err)
	require.Equal(t, "localhost:6380", opts.Addr)
	require.Equal(t, 2, opts.DB)
}

func TestNilClientErrors(t *testing.T) {
	client := &Client{}
	_, err := client.Get(context.Background(), "k")
	require.Error(t, err)
	_, err = client.AcquireLock(context.Background(), "s", "i", time.Second)
	require.Error(t, err)
	require.NoError(t, (*Lock)(nil).Release(context.Background()))
}
