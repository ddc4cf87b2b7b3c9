package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bikurim/procurement-backend/api/responses"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

// RateLimiter counts hits in a fixed window. It reports whether the hit is
// within limit and the count so far.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy allows Limit requests per client IP in each Window.
// A zero Limit or Window turns it off.
type RateLimitPolicy struct {
	Name   string
	Limit  int64
	Window time.Duration
}

func NewRateLimitPolicy(name string, window time.Duration, limit int64) RateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "default"
	}
	return RateLimitPolicy{Name: name, Limit: limit, Window: window}
}

func (p RateLimitPolicy) off() bool {
	return p.Limit <= 0 || p.Window <= 0
}

// RateLimit guards the AI routes; each accepted call is a paid upstream
// request. When the counter store fails the request is refused with 503.
func RateLimit(policy RateLimitPolicy, store RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy.off() || store == nil {
			return next
		}
		retryAfter := strconv.Itoa(int(policy.Window.Round(time.Second).Seconds()))
		limit := strconv.FormatInt(policy.Limit, 10)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r)
			ok, hits, err := store.FixedWindowAllow(ctx, policy.Name+":"+ip, policy.Limit, policy.Window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
				return
			}

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(max(policy.Limit-hits, 0), 10))
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			if logg != nil {
				logg.Warn(logg.WithFields(ctx, map[string]any{
					"policy": policy.Name,
					"ip":     ip,
					"hits":   hits,
					"limit":  policy.Limit,
				}), "rate_limit.blocked")
			}
			w.Header().Set("Retry-After", retryAfter)
			responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded").
				WithDetails(map[string]any{"retry_after_seconds": retryAfter}))
		})
	}
}

// clientIP prefers the first valid address in X-Forwarded-For, since the
// API runs behind a load balancer, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
