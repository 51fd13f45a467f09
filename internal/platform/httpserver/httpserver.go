package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with defaults sized for check-in traffic. Proof
// photos ride in the request body, so the read timeout leaves room for slow
// mobile uplinks.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
