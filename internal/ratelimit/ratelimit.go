package ratelimit

import (
  "context"
  "fmt"
  "time"

  "github.com/redis/go-redis/v9"

  "github.com/autolog-org/autolog-backend/internal/logger"
)

// Limiter is the admission pre-check consumed by the verification flow.
// Allow reports whether one more request under the given key may proceed.
type Limiter interface {
  Allow(ctx context.Context, key string) (bool, error)
}

// RedisFixedWindowLimiter counts requests per key in fixed windows backed by
// Redis, so the limit holds across processes. A Redis outage fails open: code
// issuance keeps working without admission control rather than going down
// with the cache.
type RedisFixedWindowLimiter struct {
  client *redis.Client
  log    *logger.Logger
  limit  int
  window time.Duration
  prefix string
}

func NewRedisFixedWindowLimiter(log *logger.Logger, address, password string, limit int, window time.Duration) (*RedisFixedWindowLimiter, error) {
  limiterLog := log.With("component", "RedisFixedWindowLimiter")
  client := redis.NewClient(&redis.Options{
    Addr:     address,
    Password: password,
  })
  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if err := client.Ping(ctx).Err(); err != nil {
    return nil, fmt.Errorf("failed to connect to redis at %s: %w", address, err)
  }
  limiterLog.Info("Connected to Redis for rate limiting :)", "address", address, "limit", limit, "window", window)
  return &RedisFixedWindowLimiter{
    client: client,
    log:    limiterLog,
    limit:  limit,
    window: window,
    prefix: "autolog:ratelimit:",
  }, nil
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
  windowKey := fmt.Sprintf("%s%s:%d", l.prefix, key, time.Now().Unix()/int64(l.window.Seconds()))

  count, err := l.client.Incr(ctx, windowKey).Result()
  if err != nil {
    l.log.Warn("Redis INCR failed, failing open", "error", err, "key", key)
    return true, nil
  }
  if count == 1 {
    if err := l.client.Expire(ctx, windowKey, l.window).Err(); err != nil {
      l.log.Warn("Redis EXPIRE failed on rate limit window", "error", err, "key", key)
    }
  }
  if count > int64(l.limit) {
    l.log.Warn("Rate limit exceeded", "key", key, "count", count, "limit", l.limit)
    return false, nil
  }
  return true, nil
}

// NoopLimiter admits everything. Used when Redis is not configured and in
// tests that are not about admission control.
type NoopLimiter struct{}

func (NoopLimiter) Allow(ctx context.Context, key string) (bool, error) {
  return true, nil
}
