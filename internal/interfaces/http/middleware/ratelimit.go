package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// Limiter decides whether a request identified by key may proceed.
// Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// InMemoryLimiter is a fixed-window limiter backed by a local map. Counts are
// per process, so limits multiply with the number of replicas.
type InMemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

type window struct {
	count   int
	resetAt time.Time
}

// NewInMemoryLimiter creates an in-memory fixed-window limiter allowing
// limit requests per period per key.
func NewInMemoryLimiter(limit int, period time.Duration) *InMemoryLimiter {
	l := &InMemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow implements Limiter. It never returns an error.
func (l *InMemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return true, nil
	}

	if w.count >= l.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// Close stops the background cleanup goroutine
func (l *InMemoryLimiter) Close() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
}

func (l *InMemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.period * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.After(w.resetAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		case <-l.stopCh:
			return
		}
	}
}

// RedisLimiter is a fixed-window limiter backed by Redis. Counts are shared
// across replicas.
type RedisLimiter struct {
	client    *redis.Client
	limit     int
	period    time.Duration
	keyPrefix string
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter allowing
// limit requests per period per key.
func NewRedisLimiter(client *redis.Client, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		limit:     limit,
		period:    period,
		keyPrefix: "ratelimit:",
	}
}

// Allow implements Limiter. The first hit in a window creates the counter
// with a TTL so abandoned keys expire on their own.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.keyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.period)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return incr.Val() <= int64(l.limit), nil
}

// KeyFunc extracts the rate limit key from a request
type KeyFunc func(*gin.Context) string

// ClientIPKey keys limits by client IP
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit returns middleware that consults the limiter before each request.
// A limiter failure lets the request through; throttling must not turn a
// degraded Redis into an outage.
func RateLimit(limiter Limiter, keyFunc KeyFunc, log *zap.Logger) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = ClientIPKey
	}

	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			if log != nil {
				log.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
			}
			c.Next()
			return
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
			))
			return
		}

		c.Next()
	}
}
