package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is returned when the client's session check budget is spent.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Config holds limiter tuning parameters.
type Config struct {
	Prefix    string
	MaxChecks int
	Window    time.Duration
}

// Limiter enforces a per-client session check budget.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "gg"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Allow records one session check for client and reports ErrRateLimited
// once the window's budget is exceeded. An empty client is never limited.
func (l *Limiter) Allow(ctx context.Context, client string) error {
	if l == nil || l.redis == nil || client == "" {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, l.key(client), l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxChecks) {
		return ErrRateLimited
	}
	return nil
}

// Remaining returns how many checks client may still make in the current window.
func (l *Limiter) Remaining(ctx context.Context, client string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(client)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return l.config.MaxChecks, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	left := int64(l.config.MaxChecks) - count
	if left < 0 {
		return 0, nil
	}
	return int(left), nil
}

// Reset clears client's counter.
func (l *Limiter) Reset(ctx context.Context, client string) error {
	if err := l.redis.Del(ctx, l.key(client)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) key(client string) string {
	return l.config.Prefix + ":sc:" + strings.ToLower(client)
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
