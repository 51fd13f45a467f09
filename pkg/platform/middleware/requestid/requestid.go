// Package requestid bridges chi's request ID into the request context
// accessors the services read.
package requestid

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ponto/pkg/requestcontext"
)

// Middleware copies the chi-assigned request ID into requestcontext so
// services and audit events can reference it without importing net/http.
// Mount after chi's middleware.RequestID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = requestcontext.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
