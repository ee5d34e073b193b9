package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (Locker, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocker(client, 5*time.Second), client
}

func TestWithLockRunsFunction(t *testing.T) {
	locker, _ := newTestLocker(t)

	ran := false
	err := locker.WithLock(context.Background(), "appointment:abc", func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWithLockContention(t *testing.T) {
	locker, _ := newTestLocker(t)

	err := locker.WithLock(context.Background(), "appointment:abc", func(ctx context.Context) error {
		// Second acquisition of the same key must fail while we hold it.
		inner := locker.WithLock(ctx, "appointment:abc", func(ctx context.Context) error {
			t.Fatal("inner critical section must not run")
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)
		return nil
	})

	require.NoError(t, err)
}

func TestWithLockReleasesOnExit(t *testing.T) {
	locker, client := newTestLocker(t)
	ctx := context.Background()

	require.NoError(t, locker.WithLock(ctx, "generate:doctor:1", func(ctx context.Context) error {
		return nil
	}))

	// Key must be gone so the next caller can take the lock.
	n, err := client.Exists(ctx, "lock:generate:doctor:1").Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, locker.WithLock(ctx, "generate:doctor:1", func(ctx context.Context) error {
		return nil
	}))
}

func TestWithLockDistinctKeysDoNotContend(t *testing.T) {
	locker, _ := newTestLocker(t)

	err := locker.WithLock(context.Background(), "appointment:a", func(ctx context.Context) error {
		return locker.WithLock(ctx, "appointment:b", func(ctx context.Context) error {
			return nil
		})
	})

	require.NoError(t, err)
}
