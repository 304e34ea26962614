package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // whole seconds until the window resets; only set when rejected
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter is an in-memory fixed-window counter keyed by client address.
// It is single-process only; replicas each keep their own counters.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   int
	window  time.Duration
	now     func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type Option func(*Limiter)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// NewLimiter creates a limiter admitting limit requests per window per key.
// A positive sweepInterval starts a background goroutine that drops expired entries; call Stop to end it.
func NewLimiter(limit int, window, sweepInterval time.Duration, opts ...Option) *Limiter {
	if limit < 1 {
		limit = 1
	}
	l := &Limiter{
		entries: make(map[string]*entry),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	if sweepInterval > 0 {
		go l.sweepLoop(sweepInterval)
	} else {
		close(l.done)
	}

	return l
}

// Admit counts one request for key and reports whether it may proceed.
func (l *Limiter) Admit(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(l.window)}
		l.entries[key] = e
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - 1, ResetAt: e.resetAt}
	}

	if e.count >= l.limit {
		return Decision{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			ResetAt:    e.resetAt,
			RetryAfter: retryAfterSeconds(e.resetAt.Sub(now)),
		}
	}

	e.count++
	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - e.count, ResetAt: e.resetAt}
}

// Sweep removes entries whose window has elapsed and returns how many were dropped.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Limiter) Limit() int {
	return l.limit
}

// Stop ends the background sweeper and waits for it to exit. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
	<-l.done
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	defer close(l.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
