// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by middleware and consumed by services. Keeping this package
// free of net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	staffID := requestcontext.StaffID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithDeviceID(ctx, "device-1")
package requestcontext

import (
	"context"
	"time"

	id "ponto/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	staffIDKey       struct{}
	institutionIDKey struct{}
	deviceIDKey      struct{}
	clientIPKey      struct{}
	userAgentKey     struct{}
	requestIDKey     struct{}
	requestTimeKey   struct{}
)

// StaffID retrieves the authenticated staff ID from the context.
// Returns the zero value (nil UUID) if not set.
func StaffID(ctx context.Context) id.StaffID {
	if staffID, ok := ctx.Value(staffIDKey{}).(id.StaffID); ok {
		return staffID
	}
	return id.StaffID{}
}

// WithStaffID injects a staff ID into the context.
func WithStaffID(ctx context.Context, staffID id.StaffID) context.Context {
	return context.WithValue(ctx, staffIDKey{}, staffID)
}

// InstitutionID retrieves the resolved institution ID from the context.
// Returns the zero value (nil UUID) if not set.
func InstitutionID(ctx context.Context) id.InstitutionID {
	if institutionID, ok := ctx.Value(institutionIDKey{}).(id.InstitutionID); ok {
		return institutionID
	}
	return id.InstitutionID{}
}

// WithInstitutionID injects an institution ID into the context.
func WithInstitutionID(ctx context.Context, institutionID id.InstitutionID) context.Context {
	return context.WithValue(ctx, institutionIDKey{}, institutionID)
}

// DeviceID retrieves the submitting device identifier from the context.
func DeviceID(ctx context.Context) string {
	if deviceID, ok := ctx.Value(deviceIDKey{}).(string); ok {
		return deviceID
	}
	return ""
}

// WithDeviceID injects a device identifier into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDKey{}, deviceID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	ctx = context.WithValue(ctx, userAgentKey{}, userAgent)
	return ctx
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context so all operations within a
// request observe the same "now".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
