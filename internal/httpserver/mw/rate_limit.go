package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/navspec/internal/utils"
)

// RateLimitConfig tunes the per-client token bucket.
type RateLimitConfig struct {
	Burst             int           // bucket size
	RefillPerIPPerMin int           // tokens regained per minute
	MaxEntries        int           // clients tracked before an early sweep, 0 for no limit
	SweepInterval     time.Duration // how often idle clients are forgotten
	IdleTTL           time.Duration
	TrustProxy        bool // resolve the client from proxy headers

	Now func() time.Time
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.Burst < 1 {
		c.Burst = 1
	}
	if c.RefillPerIPPerMin < 1 {
		c.RefillPerIPPerMin = 1
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type tokenBucket struct {
	tokens  float64
	updated time.Time
}

type decision struct {
	allowed    bool
	remaining  int
	retryAfter time.Duration
}

// clientLimiter keeps one bucket per client key behind a single lock.
type clientLimiter struct {
	cfg       RateLimitConfig
	perSecond float64

	mu        sync.Mutex
	clients   map[string]*tokenBucket
	nextSweep time.Time
}

func newClientLimiter(cfg RateLimitConfig) *clientLimiter {
	cfg = cfg.withDefaults()
	return &clientLimiter{
		cfg:       cfg,
		perSecond: float64(cfg.RefillPerIPPerMin) / 60,
		clients:   make(map[string]*tokenBucket),
		nextSweep: cfg.Now().Add(cfg.SweepInterval),
	}
}

// take spends one token of key's bucket if there is one.
func (l *clientLimiter) take(key string) decision {
	now := l.cfg.Now()
	capacity := float64(l.cfg.Burst)

	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries
	if full || !now.Before(l.nextSweep) {
		l.sweep(now)
	}

	b, ok := l.clients[key]
	if !ok {
		b = &tokenBucket{tokens: capacity, updated: now}
		l.clients[key] = b
	}
	if elapsed := now.Sub(b.updated).Seconds(); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+elapsed*l.perSecond)
		b.updated = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return decision{allowed: true, remaining: int(b.tokens)}
	}

	wait := math.Ceil((1 - b.tokens) / l.perSecond)
	return decision{retryAfter: time.Duration(math.Max(wait, 1)) * time.Second}
}

func (l *clientLimiter) sweep(now time.Time) {
	for key, b := range l.clients {
		if now.Sub(b.updated) > l.cfg.IdleTTL {
			delete(l.clients, key)
		}
	}
	l.nextSweep = now.Add(l.cfg.SweepInterval)
}

// RateLimit rejects clients that exhausted their bucket with a 429 and a
// Retry-After header.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newClientLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.take(utils.ClientIP(r, l.cfg.TrustProxy))

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			if !d.allowed {
				h.Set("X-RateLimit-Remaining", "0")
				h.Set("Retry-After", strconv.Itoa(int(d.retryAfter/time.Second)))
				reject(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))

			next.ServeHTTP(w, r)
		})
	}
}
