package http

import (
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDMiddleware tags every request with a UUID, echoed in the
// X-Request-Id response header and attached to debug logs for correlation.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		slog.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

// RateLimitConfig holds per-client token bucket settings.
type RateLimitConfig struct {
	Enabled bool
	// RPS is the sustained request rate per client.
	RPS float64
	// Burst is the bucket capacity per client.
	Burst int
}

// RateLimitMiddleware enforces a per-client token bucket, keyed by remote
// IP. An exhausted bucket answers 429 without touching the engine. Pass a
// disabled config for a no-op.
func RateLimitMiddleware(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
			limiters[key] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !limiterFor(host).Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
