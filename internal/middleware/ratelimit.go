package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/sift-profiler/internal/config"
)

// RateLimit is one token bucket shared by a set of route paths.
type RateLimit struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	paths   map[string]struct{}
}

// NewRateLimit builds a bucket for paths. A zero config disables limiting.
func NewRateLimit(cfg config.RateLimitConfig, paths ...string) *RateLimit {
	rl := &RateLimit{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		rl.paths[p] = struct{}{}
	}
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return rl
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	rl.limiter = rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
	return rl
}

// RateLimiter applies one token bucket shared by the given route paths.
// Other paths pass through.
func RateLimiter(cfg config.RateLimitConfig, paths ...string) echo.MiddlewareFunc {
	return NewRateLimit(cfg, paths...).Middleware()
}

// Middleware rejects over-limit requests with a 429 JSON envelope.
func (rl *RateLimit) Middleware() echo.MiddlewareFunc {
	return rl.MiddlewareWithHandler(func(c echo.Context) error {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"status": "error", "message": "profile generation rate limit exceeded"})
	})
}

// MiddlewareWithHandler draws from the same bucket and lets onLimited write
// the rejection.
func (rl *RateLimit) MiddlewareWithHandler(onLimited func(c echo.Context) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := rl.paths[c.Path()]; !ok || rl.allow() {
				return next(c)
			}
			return onLimited(c)
		}
	}
}

func (rl *RateLimit) allow() bool {
	if rl.limiter == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.limiter.Allow()
}
