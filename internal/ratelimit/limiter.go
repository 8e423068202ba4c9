package ratelimit

import (
	"context"
	"sync"
	"time"
)

// bucket tracks the remaining admissions for one source within the
// current hourly window.
type bucket struct {
	tokens      int
	windowStart time.Time
}

// Limiter hands out per-source admissions from hourly token buckets.
// The bucket refills fully at the top of each window rather than
// leaking smoothly, mirroring the "N requests per hour" quotas vendors
// actually publish. Buckets are created lazily on first use; a source
// the limiter has never seen is admitted immediately.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// Window is how often a bucket refills to capacity.
const Window = time.Hour

// New builds a limiter using the wall clock.
func New() *Limiter {
	return NewWithClock(time.Now)
}

// NewWithClock builds a limiter with an injected clock.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

// TryAcquire takes one token from the source's bucket, sizing the
// bucket to perHour on first sight. It returns false when the bucket is
// empty for the current window. A non-positive perHour means the source
// is unrestricted.
func (l *Limiter) TryAcquire(sourceID string, perHour int) bool {
	if perHour <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[sourceID]
	if !ok {
		b = &bucket{tokens: perHour, windowStart: now}
		l.buckets[sourceID] = b
	}
	if now.Sub(b.windowStart) >= Window {
		b.tokens = perHour
		b.windowStart = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Acquire blocks until a token is available or the context ends. The
// orchestrator prefers TryAcquire and defers instead; this is for
// callers that would rather wait out the window.
func (l *Limiter) Acquire(ctx context.Context, sourceID string, perHour int) error {
	for {
		if l.TryAcquire(sourceID, perHour) {
			return nil
		}
		wait := l.untilRefill(sourceID)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Remaining reports the tokens left for a source in the current window.
// An unknown source reports -1, meaning not yet rate-limited.
func (l *Limiter) Remaining(sourceID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[sourceID]
	if !ok {
		return -1
	}
	return b.tokens
}

func (l *Limiter) untilRefill(sourceID string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[sourceID]
	if !ok {
		return 0
	}
	wait := Window - l.now().Sub(b.windowStart)
	if wait < 0 {
		return 0
	}
	return wait
}
