// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/intrinsic-spiders/contact-relay/pkg/apiresponses"
	"github.com/intrinsic-spiders/contact-relay/pkg/config"
	"github.com/intrinsic-spiders/contact-relay/pkg/metrics"
)

// Config holds rate limiter configuration
type Config struct {
	// Rate is the number of requests allowed per second
	Rate float64
	// Burst is the maximum number of requests allowed in a burst
	Burst int
	// CleanupInterval is how often to clean up stale entries
	CleanupInterval time.Duration
	// MaxAge is how long to keep an entry after last access
	MaxAge time.Duration
}

// DefaultContactConfig allows 10 submissions per minute per IP with a burst of 5.
func DefaultContactConfig() Config {
	return Config{
		Rate:            10.0 / 60.0,
		Burst:           5,
		CleanupInterval: time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

// FromConfig converts the per-minute settings of the rate limit section.
func FromConfig(cfg config.RateLimit) Config {
	out := DefaultContactConfig()
	if cfg.RequestsPerMinute > 0 {
		out.Rate = float64(cfg.RequestsPerMinute) / 60.0
	}
	if cfg.Burst > 0 {
		out.Burst = cfg.Burst
	}
	return out
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// IPRateLimiter implements per-IP rate limiting with automatic cleanup
type IPRateLimiter struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	config   Config
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a per-IP rate limiter and starts its cleanup goroutine.
func New(cfg Config) *IPRateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 5 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}

	rl := &IPRateLimiter{
		entries: make(map[string]*entry),
		config:  cfg,
		done:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow checks if a request from the given IP should be allowed
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, exists := rl.entries[ip]
	if !exists {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(rl.config.Rate), rl.config.Burst)}
		rl.entries[ip] = e
	}
	e.lastAccess = time.Now()
	return e.limiter.Allow()
}

// Middleware rejects requests over the limit with a 429 envelope. route
// labels the rejection metric.
func (rl *IPRateLimiter) Middleware(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			metrics.RateLimited.WithLabelValues(route).Inc()
			apiresponses.RespondTooManyRequests(c)
			return
		}
		c.Next()
	}
}

// Stop stops the cleanup goroutine. It may be called more than once.
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *IPRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.cleanupStaleEntries()
		}
	}
}

func (rl *IPRateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, e := range rl.entries {
		if now.Sub(e.lastAccess) > rl.config.MaxAge {
			delete(rl.entries, ip)
		}
	}
}

// Len returns the current number of tracked IPs
func (rl *IPRateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.entries)
}

// Config returns a copy of the effective configuration
func (rl *IPRateLimiter) Config() Config {
	return rl.config
}
