package scanner

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker is the non-reentrant guard preventing scanner-to-scanner overlap:
// a scan still running when its next trigger fires is skipped, not queued.
type Locker interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string)
}

// RedisLock guards scans with a SET NX key. The TTL is a liveness backstop
// for a crashed holder, not a lease to be renewed.
type RedisLock struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisLock(client redis.UniversalClient, ttl time.Duration) *RedisLock {
	return &RedisLock{client: client, ttl: ttl}
}

// Acquire takes the lock. False means another invocation holds it.
func (l *RedisLock) Acquire(ctx context.Context, key string) (bool, error) {
	return l.client.SetNX(ctx, key, "1", l.ttl).Result()
}

// Release drops the lock. Best-effort: an expired key is already gone.
func (l *RedisLock) Release(ctx context.Context, key string) {
	l.client.Del(ctx, key)
}
