package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/allisson/zkgate/internal/httputil"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTimeout   = time.Hour
)

// clientLimiters keeps one token bucket per client IP.
type clientLimiters struct {
	buckets sync.Map // client IP -> *clientBucket
	limit   rate.Limit
	burst   int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{limit: rate.Limit(rps), burst: burst}
}

// RateLimitMiddleware throttles proof submissions per client IP. Proofs are
// unauthenticated until verified and verification spawns an external process, so
// a client over its budget gets 429 with Retry-After before any work is done.
// The client IP comes from c.ClientIP, which trusts the engine's proxy settings.
// Idle buckets are swept until ctx is done.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	limiters := newClientLimiters(rps, burst)
	go limiters.sweep(ctx, limiterSweepInterval)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		wait, ok := limiters.take(clientIP, time.Now())
		if ok {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(wait.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		logger.Debug("rate limit exceeded",
			slog.String("client_ip", clientIP),
			slog.Int("retry_after", retryAfter))

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
			Error:   "rate_limit_exceeded",
			Message: "Too many proof submissions from this client, retry later",
		})
	}
}

// take spends one token for ip. When none is available it reports how long until
// one will be, without consuming it.
func (l *clientLimiters) take(ip string, now time.Time) (time.Duration, bool) {
	bucket := l.bucket(ip, now)

	r := bucket.limiter.ReserveN(now, 1)
	if !r.OK() {
		return time.Second, false
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return wait, false
	}
	return 0, true
}

func (l *clientLimiters) bucket(ip string, now time.Time) *clientBucket {
	if v, ok := l.buckets.Load(ip); ok {
		b := v.(*clientBucket)
		b.lastSeen.Store(now.UnixNano())
		return b
	}

	b := &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
	b.lastSeen.Store(now.UnixNano())
	actual, _ := l.buckets.LoadOrStore(ip, b)
	return actual.(*clientBucket)
}

func (l *clientLimiters) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.evictIdle(now.Add(-limiterIdleTimeout))
		}
	}
}

// evictIdle drops buckets not used since cutoff.
func (l *clientLimiters) evictIdle(cutoff time.Time) {
	l.buckets.Range(func(key, value any) bool {
		if value.(*clientBucket).lastSeen.Load() < cutoff.UnixNano() {
			l.buckets.Delete(key)
		}
		return true
	})
}
