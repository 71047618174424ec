package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/spec-kit/status-portal/internal/config"
)

const idleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter throttles requests per client key, usually the remote IP.
type Limiter struct {
	rate  rate.Limit
	burst int
	now   func() time.Time

	mu          sync.Mutex
	clients     map[string]*entry
	lastCleanup time.Time
}

// New builds a limiter from configuration. It returns nil when limiting is
// disabled; a nil *Limiter allows everything.
func New(cfg config.RateLimitConfig) *Limiter {
	if cfg.PerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		rate:        rate.Every(time.Minute / time.Duration(cfg.PerMinute)),
		burst:       burst,
		now:         time.Now,
		clients:     make(map[string]*entry),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether the client may proceed now.
func (l *Limiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.clients[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	if now.Sub(l.lastCleanup) >= idleTTL {
		for k, v := range l.clients {
			if now.Sub(v.lastSeen) >= idleTTL {
				delete(l.clients, k)
			}
		}
		l.lastCleanup = now
	}
	return allowed
}
