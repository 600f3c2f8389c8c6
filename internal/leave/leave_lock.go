package leave

import (
	"context"
	"time"

	leaveerrors "go-leave/internal/leave/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DecisionLockKeyPrefix = "leave:decide:"

func GetDecisionLockKey(leaveID string) string {
	return DecisionLockKeyPrefix + leaveID
}

// releaseLockScript deletes the key only while it still holds our token.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DecisionLocker fails fast when another instance is already deciding the
// same request. The version check in the repository stays authoritative; the
// lock only turns most races into an early conflict.
type DecisionLocker interface {
	Acquire(ctx context.Context, leaveID string) (release func(), err error)
}

type redisDecisionLocker struct {
	rdb      *redis.Client
	ttl      time.Duration
	newToken func() string
	logger   *zap.Logger
}

func NewRedisDecisionLocker(rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) DecisionLocker {
	l := zap.L().Named("leave.lock")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.lock")
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &redisDecisionLocker{rdb: rdb, ttl: ttl, newToken: uuid.NewString, logger: l}
}

// Acquire returns ErrConcurrentDecision only when the lock is held. When
// redis is unavailable the decision proceeds unlocked.
func (l *redisDecisionLocker) Acquire(ctx context.Context, leaveID string) (func(), error) {
	key := GetDecisionLockKey(leaveID)
	token := l.newToken()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		l.logger.Warn("decision lock unavailable, continuing without it", zap.String("key", key), zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, leaveerrors.ErrConcurrentDecision
	}
	return func() {
		// the request context may already be cancelled here
		if err := releaseLockScript.Run(context.Background(), l.rdb, []string{key}, token).Err(); err != nil {
			l.logger.Warn("release decision lock failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
