// Package auth provides the bearer-token middleware protecting attendance
// endpoints.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
	"ponto/pkg/platform/httputil"
	"ponto/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	StaffID       string
	InstitutionID string
	Role          string
}

// RequireAuth validates the bearer token and injects the staff and
// institution identity into the request context. Requests without a valid
// token never reach the handler.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			staffID, err := id.ParseStaffID(claims.StaffID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed staff claim",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims"))
				return
			}
			institutionID, err := id.ParseInstitutionID(claims.InstitutionID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed institution claim",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims"))
				return
			}

			ctx = requestcontext.WithStaffID(ctx, staffID)
			ctx = requestcontext.WithInstitutionID(ctx, institutionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
