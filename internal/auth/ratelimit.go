package auth

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Limiter decides whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimitConfig contains configuration for the rate limiters.
type RateLimitConfig struct {
	Requests        int           // Requests allowed per window (default: 5)
	Window          time.Duration // Fixed window length (default: 60s)
	CleanupInterval time.Duration // How often the memory limiter drops stale windows (default: 5m)
}

// DefaultRateLimitConfig returns sensible defaults for rate limiting.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests:        5,
		Window:          60 * time.Second,
		CleanupInterval: 5 * time.Minute,
	}
}

func (cfg RateLimitConfig) withDefaults() RateLimitConfig {
	def := DefaultRateLimitConfig()
	if cfg.Requests <= 0 {
		cfg.Requests = def.Requests
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	return cfg
}

// MemoryLimiter is a fixed-window limiter local to one process.
type MemoryLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	requests    int
	length      time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type window struct {
	count int
	start time.Time
}

// NewMemoryLimiter creates an in-memory limiter and starts its cleanup loop.
func NewMemoryLimiter(cfg RateLimitConfig) *MemoryLimiter {
	cfg = cfg.withDefaults()
	ml := &MemoryLimiter{
		windows:     make(map[string]*window),
		requests:    cfg.Requests,
		length:      cfg.Window,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	go ml.cleanupLoop(cfg.CleanupInterval)

	return ml
}

// Stop stops the background cleanup goroutine.
func (ml *MemoryLimiter) Stop() {
	ml.stopOnce.Do(func() { close(ml.stopCleanup) })
}

// Allow counts the request and reports whether it is within the limit.
func (ml *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := ml.now()

	ml.mu.Lock()
	defer ml.mu.Unlock()

	w, ok := ml.windows[key]
	if !ok || now.Sub(w.start) >= ml.length {
		w = &window{start: now}
		ml.windows[key] = w
	}

	if w.count >= ml.requests {
		return false, w.start.Add(ml.length).Sub(now), nil
	}
	w.count++
	return true, 0, nil
}

func (ml *MemoryLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ml.cleanup()
		case <-ml.stopCleanup:
			return
		}
	}
}

// cleanup removes expired windows.
func (ml *MemoryLimiter) cleanup() {
	now := ml.now()

	ml.mu.Lock()
	defer ml.mu.Unlock()

	for key, w := range ml.windows {
		if now.Sub(w.start) >= ml.length {
			delete(ml.windows, key)
		}
	}
}

// RedisLimiter is a fixed-window limiter shared by every instance that talks
// to the same Redis.
type RedisLimiter struct {
	client   redis.UniversalClient
	requests int
	length   time.Duration
	prefix   string
}

// NewRedisLimiter creates a limiter from a redis:// URL.
func NewRedisLimiter(url string, cfg RateLimitConfig) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisLimiterWithClient(redis.NewClient(opts), cfg), nil
}

// NewRedisLimiterWithClient wraps an existing client.
func NewRedisLimiterWithClient(client redis.UniversalClient, cfg RateLimitConfig) *RedisLimiter {
	cfg = cfg.withDefaults()
	return &RedisLimiter{
		client:   client,
		requests: cfg.Requests,
		length:   cfg.Window,
		prefix:   "ratelimit:",
	}
}

// Allow increments the key's counter, setting the expiry on the first hit.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	key = rl.prefix + key

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, rl.length)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	if incr.Val() > int64(rl.requests) {
		retry := ttl.Val()
		if retry <= 0 {
			retry = rl.length
		}
		return false, retry, nil
	}
	return true, 0, nil
}

// Close releases the Redis connection pool.
func (rl *RedisLimiter) Close() error {
	return rl.client.Close()
}

// RateLimitMiddleware limits requests per client IP. Limiter errors let the
// request through.
func RateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests",
				"code":        "RATE_LIMITED",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}
