package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tunebox/songreview/internal/logger"
)

// RateLimiter is a fixed-window counter keyed by user id when known, else client IP.
type RateLimiter struct {
	requests map[string]*window
	mu       sync.Mutex
	limit    int
	period   time.Duration
	now      func() time.Time
}

type window struct {
	count     int
	resetTime time.Time
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string]*window),
		limit:    limit,
		period:   period,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := c.ClientIP()
		if uid := c.GetString("user_id"); uid != "" {
			identifier = "user:" + uid
		}

		if !rl.allow(identifier) {
			logger.Warn(logger.EventRateLimited, "Rate limit exceeded", logger.Fields(
				"identifier", identifier,
				"path", c.FullPath(),
			))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, exists := rl.requests[identifier]
	if !exists || now.After(w.resetTime) {
		rl.requests[identifier] = &window{count: 1, resetTime: now.Add(rl.period)}
		return true
	}

	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// Cleanup drops expired windows every minute until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, w := range rl.requests {
				if now.After(w.resetTime) {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
