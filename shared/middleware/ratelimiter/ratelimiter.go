package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a token bucket for one identity (a browser session).
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	timer      *time.Timer
}

// Limiter keeps one token bucket per identity. Buckets that stay unused for
// idle are dropped.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens per second
	capacity float64
	idle     time.Duration
	now      func() time.Time
}

func New(rate, capacity float64, idle time.Duration) *Limiter {
	return &Limiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		idle:     idle,
		now:      time.Now,
	}
}

func (l *Limiter) getBucket(identity string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[identity]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: l.now()}
		l.buckets[identity] = b
	}

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(l.idle, func() { l.forget(identity, b) })
	return b
}

func (l *Limiter) forget(identity string, b *bucket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buckets[identity] == b {
		delete(l.buckets, identity)
	}
}

// Allow takes one token from identity's bucket.
func (l *Limiter) Allow(identity string) bool {
	b := l.getBucket(identity)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Len reports how many identities are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop cleans up all timers
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		if b.timer != nil {
			b.timer.Stop()
		}
	}
}
