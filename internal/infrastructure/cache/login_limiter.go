package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// failScript bumps the failure counter. The window starts at the first
// failure and restarts at the failure that reaches the limit, so a lock
// always lasts the full window.
var failScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 or current == tonumber(ARGV[2]) then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// LoginLimiter counts failed logins per key in Redis and reports a key as
// locked once MaxAttempts failures happened within Window.
type LoginLimiter struct {
	RDB         *redis.Client
	MaxAttempts int
	Window      time.Duration
}

func NewLoginLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{RDB: rdb, MaxAttempts: maxAttempts, Window: window}
}

func limiterKey(key string) string { return "auth:fail:" + key }

func (l *LoginLimiter) Locked(ctx context.Context, key string) (bool, error) {
	if l.MaxAttempts <= 0 {
		return false, nil
	}
	n, err := l.RDB.Get(ctx, limiterKey(key)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		// fail open
		return false, err
	}
	return n >= l.MaxAttempts, nil
}

func (l *LoginLimiter) Fail(ctx context.Context, key string) error {
	return failScript.Run(ctx, l.RDB, []string{limiterKey(key)}, l.Window.Milliseconds(), l.MaxAttempts).Err()
}

func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	return l.RDB.Del(ctx, limiterKey(key)).Err()
}
