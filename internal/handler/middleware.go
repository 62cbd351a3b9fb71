package handler

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Logger emits one structured access line per request and stores chi's
// request id in the context for downstream loggers.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			if reqID := middleware.GetReqID(ctx); reqID != "" {
				ctx = logger.WithRequestID(ctx, reqID)
				r = r.WithContext(ctx)
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.FromContext(ctx, base).Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", r.RemoteAddr,
			)
		})
	}
}

// CORS allows any origin. Preflight requests are answered directly.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimiter hands out a token bucket per client IP.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	ttl   time.Duration

	limiters sync.Map // client ip -> *cachedLimiter
}

type cachedLimiter struct {
	limiter   *rate.Limiter
	expiresAt time.Time
}

// NewRateLimiter builds a limiter allowing rps requests per second per client.
// rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{rps: rate.Limit(rps), burst: burst, ttl: 5 * time.Minute}
}

// Middleware rejects requests over the client's budget with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.rps > 0 && !rl.limiterFor(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := time.Now()
	if v, ok := rl.limiters.Load(key); ok {
		cached := v.(*cachedLimiter)
		if now.Before(cached.expiresAt) {
			return cached.limiter
		}
	}
	l := rate.NewLimiter(rl.rps, rl.burst)
	rl.limiters.Store(key, &cachedLimiter{limiter: l, expiresAt: now.Add(rl.ttl)})
	return l
}

// clientIP strips the port from RemoteAddr, which RealIP has already rewritten.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
