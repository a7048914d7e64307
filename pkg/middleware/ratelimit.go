package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter is an in-memory keyed fixed-window counter. One instance is
// built per endpoint class so authentication routes can run a stricter
// limit than general API reads.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type client struct {
	tokens    int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// sweep drops idle keys so the map doesn't grow without bound. Runs
// piggybacked on Allow, so the limiter owns no goroutine. Caller holds
// the lock.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, c := range rl.clients {
		if now.Sub(c.lastReset) > rl.window*2 {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

// Allow is the atomic check-and-increment: the decision and the counter
// update happen under one lock acquisition.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.window*2 {
		rl.sweep(now)
	}
	c, exists := rl.clients[key]

	if !exists {
		rl.clients[key] = &client{tokens: rl.limit - 1, lastReset: now}
		return true
	}

	if now.Sub(c.lastReset) >= rl.window {
		c.tokens = rl.limit - 1
		c.lastReset = now
		return true
	}

	if c.tokens > 0 {
		c.tokens--
		return true
	}
	return false
}

// RateLimit guards a route group with the given limiter. The key is the
// authenticated identity when present, the caller IP otherwise, always
// prefixed by the class so the same user gets independent budgets.
func RateLimit(rl *RateLimiter, class string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if uid, ok := c.Get("uid").(string); ok && uid != "" {
				key = uid
			}
			if !rl.Allow(class + ":" + key) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
			}
			return next(c)
		}
	}
}
