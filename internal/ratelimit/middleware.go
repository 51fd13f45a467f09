package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"ponto/pkg/platform/httputil"
	"ponto/pkg/requestcontext"
)

// Middleware enforces a per-client request limit on the attendance API. The
// key prefers the
// authenticated staff member, then the device fingerprint, then the client
// IP, so unauthenticated probes are still throttled.
func Middleware(limiter Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			result, err := limiter.Allow(ctx, clientKey(r))
			if err != nil {
				// Fail open: a broken limiter must not block check-ins.
				logger.ErrorContext(ctx, "rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := int(result.ResetAt.Sub(requestcontext.Now(ctx)).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":       "rate_limit_exceeded",
					"message":     "too many submissions, please try again later",
					"retry_after": retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	ctx := r.Context()
	if staffID := requestcontext.StaffID(ctx); !staffID.IsNil() {
		return "staff:" + staffID.String()
	}
	if deviceID := requestcontext.DeviceID(ctx); deviceID != "" {
		return "device:" + deviceID
	}
	return "ip:" + requestcontext.ClientIP(ctx)
}
