package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client key (IP address).
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows perMinute attempts per key with the given burst.
// perMinute <= 0 disables limiting.
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	if burst <= 0 {
		burst = 1
	}
	l := &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Inf,
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
	if perMinute > 0 {
		l.rate = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return l
}

func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	if len(l.limiters) > 1024 {
		l.cleanupLocked(now)
	}
	return allowed
}

func (l *LoginLimiter) cleanupLocked(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.limiters, k)
		}
	}
}
