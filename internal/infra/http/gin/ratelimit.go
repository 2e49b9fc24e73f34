package ginserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request fits the budget of key.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// slidingWindow trims entries older than the window, then admits the request when
// the remaining count is below the limit.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)
if count >= limit then
	redis.call('PEXPIRE', key, ttl)
	return 0
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, ttl)
return 1
`)

// RedisLimiter shares budgets across instances.
type RedisLimiter struct {
	Client *redis.Client
	Prefix string
}

func (l RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	res, err := slidingWindow.Run(ctx, l.Client, []string{l.Prefix + "ratelimit:" + key},
		now.Add(-window).UnixMilli(),
		now.UnixMilli(),
		limit,
		window.Milliseconds(),
		strconv.FormatInt(now.UnixNano(), 10)+"-"+uuid.NewString(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("ratelimit: redis eval: %w", err)
	}
	return res == 1, nil
}

// LocalLimiter keeps a token bucket per key in process memory.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{limiters: make(map[string]*rate.Limiter)}
}

func (l *LocalLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow(), nil
}

// RateLimitPolicy names one budget applied per client IP.
type RateLimitPolicy struct {
	Name   string
	Limit  int
	Window time.Duration
}

// RateLimit enforces policy with primary, using fallback when primary errors.
func RateLimit(primary, fallback Limiter, policy RateLimitPolicy, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if primary == nil || policy.Limit <= 0 || policy.Window <= 0 {
			c.Next()
			return
		}
		key := policy.Name + ":" + c.ClientIP()
		allowed, err := primary.Allow(c.Request.Context(), key, policy.Limit, policy.Window)
		if err != nil {
			if logger != nil {
				logger.Warn("rate limiter unavailable, using local budget", "error", err, "policy", policy.Name)
			}
			allowed = true
			if fallback != nil {
				allowed, _ = fallback.Allow(c.Request.Context(), key, policy.Limit, policy.Window)
			}
		}
		if !allowed {
			if logger != nil {
				logger.Warn("rate limit exceeded", "policy", policy.Name, "client_ip", c.ClientIP())
			}
			c.Header("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "rate limit exceeded, try again later"})
			return
		}
		c.Next()
	}
}
