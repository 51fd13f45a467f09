// Package metadata extracts client-identifying request metadata early in the
// middleware chain: client IP, User-Agent, and the derived device handle the
// submission guard and audit trail key on.
package metadata

import (
	"net/http"
	"strings"

	"ponto/internal/device"
	"ponto/pkg/requestcontext"
)

// deviceHeader lets native clients present a stable installation identifier.
// Without it the device handle falls back to the metadata fingerprint.
const deviceHeader = "X-Device-ID"

// ClientMetadata extracts client IP, User-Agent, and device identity from the
// request and adds them to the context for handlers and services.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIPFromRequest(r)
		userAgent := r.Header.Get("User-Agent")

		deviceID := r.Header.Get(deviceHeader)
		if deviceID == "" {
			deviceID = device.Fingerprint(userAgent, ip)
		}

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, userAgent)
		ctx = requestcontext.WithDeviceID(ctx, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the real client IP from the request, handling
// proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...);
	// the first is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// X-Real-IP is used by nginx and other proxies.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" for IPv4 and "[::1]:port" for IPv6.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
