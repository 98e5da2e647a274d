// Package ratelimit keeps one token bucket per client key.
package ratelimit

import (
	"sync"
	"time"

	"github.com/roomify-app/roomify/internal/timex"
	"golang.org/x/time/rate"
)

// DefaultMaxKeys bounds how many buckets a Limiter tracks at once.
const DefaultMaxKeys = 10000

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter manages rate limits for many keys, typically client addresses.
// Buckets idle long enough to have refilled are dropped, and the number of
// tracked keys never exceeds the configured maximum.
type Limiter struct {
	limiters  map[string]*entry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	maxKeys   int
	clock     timex.Clock
	lastSweep time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithIdleTTL drops buckets unused for d. The default is the time a drained
// bucket needs to refill, after which a fresh bucket behaves identically.
func WithIdleTTL(d time.Duration) Option {
	return func(l *Limiter) { l.idleTTL = d }
}

// WithMaxKeys caps the number of tracked keys. When full, the least recently
// used key is evicted.
func WithMaxKeys(n int) Option {
	return func(l *Limiter) { l.maxKeys = n }
}

// WithClock sets the time source.
func WithClock(c timex.Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// NewLimiter creates a limiter allowing requestsPerHour per key with bursts
// of up to burst requests.
func NewLimiter(requestsPerHour int, burst int, opts ...Option) *Limiter {
	r := rate.Limit(float64(requestsPerHour) / 3600.0)

	l := &Limiter{
		limiters: make(map[string]*entry),
		rate:     r,
		burst:    burst,
		maxKeys:  DefaultMaxKeys,
		clock:    timex.Real{},
	}
	if r > 0 {
		l.idleTTL = time.Duration(float64(burst) / float64(r) * float64(time.Second))
	} else {
		l.idleTTL = time.Hour
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.maxKeys < 1 {
		l.maxKeys = 1
	}
	l.lastSweep = l.clock.Now()
	return l
}

// GetLimiter returns the bucket for key, creating it on first use.
func (l *Limiter) GetLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.get(key, l.clock.Now())
}

func (l *Limiter) get(key string, now time.Time) *rate.Limiter {
	if e, ok := l.limiters[key]; ok {
		e.lastSeen = now
		return e.limiter
	}

	if len(l.limiters) >= l.maxKeys || now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}
	if len(l.limiters) >= l.maxKeys {
		l.evictOldest()
	}

	e := &entry{limiter: rate.NewLimiter(l.rate, l.burst), lastSeen: now}
	l.limiters[key] = e
	return e.limiter
}

func (l *Limiter) sweep(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) >= l.idleTTL {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}

func (l *Limiter) evictOldest() {
	var (
		oldest string
		seen   time.Time
		found  bool
	)
	for k, e := range l.limiters {
		if !found || e.lastSeen.Before(seen) {
			oldest, seen, found = k, e.lastSeen, true
		}
	}
	if found {
		delete(l.limiters, oldest)
	}
}

// Allow consumes one token for key.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	return l.get(key, now).AllowN(now, 1)
}

// Tokens returns the tokens currently available to key.
func (l *Limiter) Tokens(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	return l.get(key, now).TokensAt(now)
}

// Len reports how many keys are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
