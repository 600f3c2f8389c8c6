package leave

import (
	"context"
	"testing"
	"time"

	leaveerrors "go-leave/internal/leave/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLocker(rdb *redis.Client, ttl time.Duration, token string) *redisDecisionLocker {
	l := NewRedisDecisionLocker(rdb, ttl, zap.NewNop()).(*redisDecisionLocker)
	l.newToken = func() string { return token }
	return l
}

func TestRedisDecisionLocker_Acquire(t *testing.T) {
	ctx := context.Background()
	key := GetDecisionLockKey("leave-1")

	t.Run("acquires and releases own token", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		locker := newTestLocker(rdb, 5*time.Second, "token-a")

		mock.ExpectSetNX(key, "token-a", 5*time.Second).SetVal(true)
		mock.ExpectEvalSha(releaseLockScript.Hash(), []string{key}, "token-a").SetVal(int64(1))

		release, err := locker.Acquire(ctx, "leave-1")
		require.NoError(t, err)
		release()

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("release after expiry leaves the new holder alone", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		locker := newTestLocker(rdb, 5*time.Second, "token-a")

		mock.ExpectSetNX(key, "token-a", 5*time.Second).SetVal(true)
		// key now holds another caller's token, so the script deletes nothing
		mock.ExpectEvalSha(releaseLockScript.Hash(), []string{key}, "token-a").SetVal(int64(0))

		release, err := locker.Acquire(ctx, "leave-1")
		require.NoError(t, err)
		release()

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("held by another decision", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		locker := newTestLocker(rdb, 5*time.Second, "token-b")

		mock.ExpectSetNX(key, "token-b", 5*time.Second).SetVal(false)

		release, err := locker.Acquire(ctx, "leave-1")

		assert.Nil(t, release)
		assert.ErrorIs(t, err, leaveerrors.ErrConcurrentDecision)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis unavailable proceeds without lock", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		locker := newTestLocker(rdb, 0, "token-c")

		mock.ExpectSetNX(key, "token-c", 10*time.Second).SetErr(redis.ErrClosed)

		release, err := locker.Acquire(ctx, "leave-1")

		require.NoError(t, err)
		require.NotNil(t, release)
		release()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetDecisionLockKey(t *testing.T) {
	assert.Equal(t, "leave:decide:abc", GetDecisionLockKey("abc"))
}
