package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter enforces a fixed window per key across all API
// instances sharing the same redis. Redis trouble fails open: limiting
// is protection, not a feature callers depend on.
type RedisRateLimiter struct {
	client  *redis.Client
	log     *slog.Logger
	limit   int
	window  time.Duration
	prefix  string
	timeout time.Duration
}

func NewRedisRateLimiter(client *redis.Client, log *slog.Logger, limit int, window time.Duration) *RedisRateLimiter {
	if window <= 0 {
		window = time.Minute
	}

	return &RedisRateLimiter{
		client:  client,
		log:     log,
		limit:   limit,
		window:  window,
		prefix:  "qanda:ratelimit:",
		timeout: 250 * time.Millisecond,
	}
}

func (rl *RedisRateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		allowed, retryAfter := rl.allow(key)

		if !allowed {
			c.Header("Retry-After", itoa(int(retryAfter.Seconds())))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests. Please try again shortly.",
				},
			})

			return
		}

		c.Next()
	}
}

func (rl *RedisRateLimiter) allow(key string) (bool, time.Duration) {
	if rl.limit <= 0 {
		return true, 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.logRedisError("incr", err)
		return true, 0
	}

	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			rl.logRedisError("expire", err)
		}
	}

	if int(count) <= rl.limit {
		return true, 0
	}

	ttl, err := rl.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = rl.window
	}

	return false, ttl
}

func (rl *RedisRateLimiter) logRedisError(op string, err error) {
	if rl.log == nil {
		return
	}
	rl.log.Error("redis rate limiter error", "op", op, "err", err)
}
