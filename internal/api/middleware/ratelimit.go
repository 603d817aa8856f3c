package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openwork-hackathon/team-moltroulette/internal/metrics"
)

// RateLimit defines a fixed-window limit for an endpoint pattern.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// RateLimiter applies per-IP fixed-window limits to the public endpoints.
// This is transport-level abuse protection; the 30-second per-sender message
// limit lives in the core gateway and is unrelated.
type RateLimiter struct {
	client *redis.Client // nil disables limiting (single-instance dev)
	logger zerolog.Logger
	limits map[string]RateLimit
}

// NewRateLimiter creates a rate limiter. A nil Redis client turns it into a
// pass-through.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		logger: logger,
		limits: map[string]RateLimit{
			"POST /api/register": {10, time.Hour},
			"GET /api/spectate":  {200, time.Minute},
			"GET /api/rooms":     {120, time.Minute},
			"GET /api/queue":     {120, time.Minute},
			"GET /api/agents":    {60, time.Minute},
			"GET /api/status":    {60, time.Minute},
		},
	}
}

// Middleware returns the rate limiting middleware.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.client == nil {
			next.ServeHTTP(w, r)
			return
		}

		limit, ok := rl.findLimit(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ip := RealIP(r)
		now := time.Now()
		bucket := now.Unix() / int64(limit.Window.Seconds())
		key := fmt.Sprintf("ratelimit:ip:%s:%s:%d", ip, r.URL.Path, bucket)

		pipe := rl.client.Pipeline()
		countCmd := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, limit.Window)
		_, _ = pipe.Exec(r.Context())

		count := countCmd.Val()
		remaining := int64(limit.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		resetAt := time.Unix((bucket+1)*int64(limit.Window.Seconds()), 0)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > int64(limit.Requests) {
			retryAfter := int(time.Until(resetAt).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			metrics.RateLimitHits.WithLabelValues("http").Inc()
			rl.logger.Warn().
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Int64("count", count).
				Msg("rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"error":"Too many requests. Please try again later.","retry_after":%d}`, retryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// findLimit finds the matching rate limit for a request.
func (rl *RateLimiter) findLimit(r *http.Request) (RateLimit, bool) {
	key := r.Method + " " + r.URL.Path
	for pattern, limit := range rl.limits {
		if strings.HasPrefix(key, pattern) {
			return limit, true
		}
	}
	return RateLimit{}, false
}

// RealIP extracts the real client IP from headers or connection.
func RealIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
