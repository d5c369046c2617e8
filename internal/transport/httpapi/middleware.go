package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ignajaliff/sheen-schedule-clean/internal/metrics"
)

// limiterIdleTTL is how long a client IP may stay silent before its bucket
// is dropped. A bucket idle that long has refilled anyway.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64
}

// rateLimiter keeps one token bucket per client IP. Idle buckets are swept
// lazily from the request path.
type rateLimiter struct {
	limiters sync.Map
	rps      float64
	burst    int
	idleTTL  time.Duration
	now      func() time.Time

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &rateLimiter{rps: rps, burst: burst, idleTTL: limiterIdleTTL, now: time.Now, lastSweep: time.Now()}
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	now := l.now()
	if v, ok := l.limiters.Load(key); ok {
		e := v.(*limiterEntry)
		e.lastSeen.Store(now.UnixNano())
		return e.lim
	}
	e := &limiterEntry{lim: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
	e.lastSeen.Store(now.UnixNano())
	actual, loaded := l.limiters.LoadOrStore(key, e)
	if loaded {
		e = actual.(*limiterEntry)
		e.lastSeen.Store(now.UnixNano())
	}
	return e.lim
}

// sweep drops buckets not used within idleTTL. It runs at most once per
// idleTTL.
func (l *rateLimiter) sweep() {
	now := l.now()
	l.sweepMu.Lock()
	if now.Sub(l.lastSweep) < l.idleTTL {
		l.sweepMu.Unlock()
		return
	}
	l.lastSweep = now
	l.sweepMu.Unlock()

	cutoff := now.Add(-l.idleTTL).UnixNano()
	l.limiters.Range(func(key, v any) bool {
		if v.(*limiterEntry).lastSeen.Load() < cutoff {
			l.limiters.Delete(key)
		}
		return true
	})
}

func (l *rateLimiter) size() int {
	n := 0
	l.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (l *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		l.sweep()
		if !l.getLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody("rate limit exceeded"))
			return
		}
		c.Next()
	}
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := c.Writer.Status()
		metrics.ObserveHTTP(c.Request.Method, route, code, elapsed)

		level := slog.LevelInfo
		if code >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.log.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", route),
			slog.Int("status", code),
			slog.Duration("duration", elapsed),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
