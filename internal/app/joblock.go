package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseSweepLockScript deletes the lease only when the caller still owns
// it, so a sweep that outlived its TTL cannot release a successor's lease.
var releaseSweepLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisJobLock implements a distributed lease over Redis to keep sweep
// invocations from overlapping when a run outlasts its schedule interval.
type RedisJobLock struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisJobLock(client redis.UniversalClient, prefix string) *RedisJobLock {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "editlance:sweep_lock"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &RedisJobLock{
		client: client,
		prefix: trimmedPrefix,
	}
}

func (l *RedisJobLock) key(name string) string {
	return fmt.Sprintf("%s:%s", l.prefix, name)
}

// Acquire attempts to take the lease for a named job. It returns the token
// the caller must present to Release, and whether the lease was granted.
func (l *RedisJobLock) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}

	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, l.key(name), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, acquired, nil
}

// Release gives the lease back. A stale token is a no-op.
func (l *RedisJobLock) Release(ctx context.Context, name, token string) error {
	_, err := releaseSweepLockScript.Run(ctx, l.client, []string{l.key(name)}, token).Result()
	return err
}

// NoopJobLock grants every acquisition. Used when Redis is not configured,
// preserving single-instance deployments that need no coordination.
type NoopJobLock struct{}

func (NoopJobLock) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	return "", true, nil
}

func (NoopJobLock) Release(ctx context.Context, name, token string) error { return nil }
