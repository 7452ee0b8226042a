package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Limiter allows max requests per client in each fixed window
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	max     int
	per     time.Duration
	now     func() time.Time
}

type window struct {
	start time.Time
	used  int
}

// New creates a limiter allowing max requests per window for each key
func New(max int, per time.Duration) *Limiter {
	return &Limiter{windows: map[string]*window{}, max: max, per: per, now: time.Now}
}

// Allow spends one request for key, reporting false once the window is used up
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.windows[key]
	if w == nil || now.Sub(w.start) >= l.per {
		l.sweep(now)
		w = &window{start: now}
		l.windows[key] = w
	}
	if w.used >= l.max {
		return false
	}
	w.used++
	return true
}

// sweep forgets finished windows so idle clients don't pile up
func (l *Limiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.per {
			delete(l.windows, k)
		}
	}
}

// Middleware rejects requests over the limit with 429, keyed by client IP
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
