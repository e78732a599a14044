package middleware

import (
	"net/http"
	"sync"
	"time"
)

// callerState tracks one remote address within the current window.
type callerState struct {
	windowStart time.Time
	requests    int
}

// limiter implements a fixed-window counter per remote address. The
// control surface is low traffic, so precision beyond that is not worth
// the bookkeeping.
type limiter struct {
	mu      sync.Mutex
	callers map[string]*callerState
	limit   int
	window  time.Duration
}

func newLimiter(requestsPerMinute int) *limiter {
	l := &limiter{
		callers: make(map[string]*callerState),
		limit:   requestsPerMinute,
		window:  time.Minute,
	}
	go l.evictIdle()
	return l
}

// evictIdle drops addresses that have not been seen for a full window so
// the map does not grow without bound.
func (l *limiter) evictIdle() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		for addr, c := range l.callers {
			if time.Since(c.windowStart) > l.window {
				delete(l.callers, addr)
			}
		}
		l.mu.Unlock()
	}
}

func (l *limiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.callers[addr]
	if !ok || time.Since(c.windowStart) > l.window {
		l.callers[addr] = &callerState{windowStart: time.Now(), requests: 1}
		return true
	}
	if c.requests >= l.limit {
		return false
	}
	c.requests++
	return true
}

func callerAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}

// RateLimit rejects callers that exceed requestsPerMinute with 429.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	l := newLimiter(requestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(callerAddr(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": "Rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
