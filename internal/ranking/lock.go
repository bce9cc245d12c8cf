package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RunLock guards a date against concurrent calculator runs.
type RunLock interface {
	Acquire(ctx context.Context, date time.Time) (bool, error)
	Release(ctx context.Context, date time.Time) error
}

// RedisRunLock implements RunLock with a per-date SET NX marker. The TTL
// bounds how long a crashed run can block reruns; the token ensures a
// release never drops a newer holder's lock.
type RedisRunLock struct {
	client *redis.Client
	ttl    time.Duration
	token  string
}

// NewRedisRunLock constructs a run lock with the given marker TTL.
func NewRedisRunLock(client *redis.Client, ttl time.Duration) *RedisRunLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisRunLock{
		client: client,
		ttl:    ttl,
		token:  uuid.NewString(),
	}
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Acquire takes the per-date marker; false means another run holds it.
func (l *RedisRunLock) Acquire(ctx context.Context, date time.Time) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(date), l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire ranking lock: %w", err)
	}
	return ok, nil
}

// Release drops the marker if this instance still owns it.
func (l *RedisRunLock) Release(ctx context.Context, date time.Time) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(date)}, l.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release ranking lock: %w", err)
	}
	return nil
}

func (l *RedisRunLock) key(date time.Time) string {
	return "quiz:rank:lock:" + date.Format("2006-01-02")
}
