// Package livez exposes the Hub's standalone liveness endpoint: an
// HTTP server, orthogonal to the gRPC RPC Surface, reporting process
// liveness, subsystem readiness, and Prometheus metrics. It follows the
// teacher's pkg/api.HealthServer shape (a *http.ServeMux wrapped in a
// small Server type with Start/GetHandler), built on top of the
// package-level component-health registry in pkg/metrics rather than
// reimplementing one.
package livez

import (
	"net/http"
	"time"

	"github.com/cuemby/hub/pkg/metrics"
)

// Server serves /health, /ready, /live, and /metrics.
type Server struct {
	mux *http.ServeMux
}

// New builds a liveness Server. Callers report subsystem health via
// metrics.RegisterComponent/UpdateComponent using the same component
// names GetReadiness checks: "registry", "fabric", "api".
func New() *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/ready", metrics.ReadyHandler())
	mux.HandleFunc("/live", metrics.LivenessHandler())
	mux.Handle("/metrics", metrics.Handler())
	return &Server{mux: mux}
}

// Start runs the liveness HTTP server on addr until it errors or its
// process exits; it blocks like http.Server.ListenAndServe.
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// Handler returns the underlying mux for embedding in other servers or
// for use with httptest in tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}
