// Package ratelimit implements token bucket rate limiting for HTTP handlers.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int           // requests per minute
	Remaining  int           // requests left in the current window
	RetryAfter time.Duration // how long to wait before retrying (0 if allowed)
}

// Limiter manages one token bucket per key.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	perMin     int
	stop       chan struct{}
	stopOnce   sync.Once
	maxIdleAge time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing perMin requests per minute per key,
// with a burst of perMin.
func NewLimiter(perMin int) *Limiter {
	l := &Limiter{
		buckets:    make(map[string]*bucket),
		perMin:     perMin,
		stop:       make(chan struct{}),
		maxIdleAge: 10 * time.Minute,
	}
	go l.cleanupLoop()
	return l
}

// Allow checks whether a request under the given key may proceed.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			limiter: rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.perMin),
		}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	l.mu.Unlock()

	allowed := b.limiter.Allow()
	remaining := max(int(b.limiter.Tokens()), 0)

	var retryAfter time.Duration
	if !allowed {
		// Wait until one token refills.
		retryAfter = max(time.Duration(60.0/float64(l.perMin))*time.Second, time.Second)
	}

	return Result{
		Allowed:    allowed,
		Limit:      l.perMin,
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// cleanupLoop drops buckets that have been idle long enough to be full again.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-l.maxIdleAge)
			l.mu.Lock()
			for key, b := range l.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}
