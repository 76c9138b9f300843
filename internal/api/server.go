package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/CDLUC3/rslv-go/internal/catalog"
	"github.com/CDLUC3/rslv-go/internal/config"
)

// Server wraps the HTTP server and mux for RSLV's resolution surface.
type Server struct {
	httpServer *http.Server
}

// NewServer wires the full resolution surface: the resolve route, the
// dedicated introspection route, service info, a static favicon 404, and a
// healthz probe for operators. cat and cfg must outlive the server.
func NewServer(cat *catalog.Catalog, cfg *config.EnvConfig) *Server {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", HandleHealthz())
	mux.Handle("GET /favicon.ico", HandleFavicon())

	// A "GET" pattern also matches HEAD requests; registering HEAD
	// separately would conflict with the GET patterns.
	mux.Handle("GET /.info", HandleServiceInfo(cat))

	info := HandleInfo(cat, cfg)
	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		mux.Handle(method+" /.info/{identifier...}", info)
	}

	resolve := HandleResolve(cat, cfg)
	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		mux.Handle(method+" /{identifier...}", resolve)
	}

	// ServeMux answers a path that its cleaning would change (such as the
	// "//" of an embedded "http://...") with a redirect to the cleaned path.
	// Identifiers may contain such runs, so requests matching an identifier
	// route are handed to that route's handler directly.
	routes := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		switch {
		case strings.HasSuffix(pattern, " /.info/{identifier...}"):
			h = info
		case strings.HasSuffix(pattern, " /{identifier...}"):
			h = resolve
		}
		h.ServeHTTP(w, r)
	})

	handler := RequestIDMiddleware(routes)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: handler,
	}

	return &Server{httpServer: srv}
}

// ListenAndServe starts the HTTP server. It blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
