package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimit returns middleware that caps each client IP to limit requests
// per window. Counters live in process and reset when their window rolls
// over, which is enough for a single-instance dashboard backend.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	rl := &windowLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*windowCount),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(extractClientIP(r), time.Now()) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type windowCount struct {
	start time.Time
	n     int
}

type windowLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*windowCount
}

func (rl *windowLimiter) allow(clientIP string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[clientIP]
	if !ok || now.Sub(c.start) >= rl.window {
		rl.clients[clientIP] = &windowCount{start: now, n: 1}
		return true
	}
	if c.n >= rl.limit {
		return false
	}
	c.n++
	return true
}

// extractClientIP determines the real client IP from standard proxy headers,
// falling back to the direct remote address.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
