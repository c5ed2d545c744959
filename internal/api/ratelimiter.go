package api

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

type rateLimiter interface {
	Allow() bool
}

type limiterAdapter struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &limiterAdapter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (l *limiterAdapter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

// retryAfter reports how long a client should wait for the next token.
func (l *limiterAdapter) retryAfter() time.Duration {
	if l == nil || l.limiter == nil || l.limiter.Limit() <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / float64(l.limiter.Limit()))
}

// rateLimitMiddleware throttles every route except health checks, which must
// keep answering while calculations are being rejected.
func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" || limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limiter)))
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}

func retryAfterSeconds(limiter rateLimiter) int {
	wait := time.Second
	if adapter, ok := limiter.(*limiterAdapter); ok {
		wait = adapter.retryAfter()
	}
	secs := int((wait + time.Second - 1) / time.Second)
	return max(secs, 1)
}
