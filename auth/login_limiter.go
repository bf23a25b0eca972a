package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/The-entrepreneur/reent/internal/errors"
)

// LoginLimiter throttles login attempts. Implementations return
// ErrTooManyLogins when the caller should back off, and any other error when
// the throttle backend itself failed; the session manager fails open on the
// latter.
type LoginLimiter interface {
	Enforce(ctx context.Context, email, ip string) error
}

// RedisLoginLimiter counts login attempts per email and per client IP in
// fixed windows backed by Redis INCR + EXPIRE.
type RedisLoginLimiter struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
}

var _ LoginLimiter = (*RedisLoginLimiter)(nil)

func NewRedisLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{
		redis:       client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (l *RedisLoginLimiter) Enforce(ctx context.Context, email, ip string) error {
	if err := l.enforceKey(ctx, loginEmailKey(email)); err != nil {
		return err
	}
	if ip != "" {
		if err := l.enforceKey(ctx, loginIPKey(ip)); err != nil {
			return err
		}
	}
	return nil
}

func (l *RedisLoginLimiter) enforceKey(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("login limiter redis unavailable: %w", err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("login limiter redis unavailable: %w", err)
		}
	}

	if count > int64(l.maxAttempts) {
		return apperrors.ErrTooManyLogins
	}

	return nil
}

func loginEmailKey(email string) string {
	return "login:email:" + email
}

func loginIPKey(ip string) string {
	return "login:ip:" + ip
}
