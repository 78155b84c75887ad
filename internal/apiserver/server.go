// Package apiserver is the HTTP shell around the turn engine. It
// exposes the session endpoints under /v1, health and readiness probes,
// Prometheus metrics, and an optional MCP mount.
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/yooncheol/bapsang/internal/agent"
	"github.com/yooncheol/bapsang/internal/logging"
)

const mcpEndpointPath = "/v1/mcp"

// ReadinessChecker reports whether the serving dependencies are warm.
type ReadinessChecker interface {
	IsReady() bool
}

// NoOpReadinessChecker always reports ready. Used when no component
// gates readiness.
type NoOpReadinessChecker struct{}

// IsReady always returns true for the no-op checker.
func (n *NoOpReadinessChecker) IsReady() bool { return true }

// Options configures the API server.
type Options struct {
	Port   int
	Engine *agent.Engine

	// Readiness gates /readyz. Defaults to NoOpReadinessChecker.
	Readiness ReadinessChecker

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// MCP is mounted at /v1/mcp over streamable HTTP. Nil skips the
	// mount.
	MCP *server.MCPServer
}

// Server handles the HTTP API. It implements lifecycle.Component.
type Server struct {
	port      int
	server    *http.Server
	logger    *logging.Logger
	engine    *agent.Engine
	router    *http.ServeMux
	readiness ReadinessChecker
	gatherer  prometheus.Gatherer
	mcp       *server.MCPServer
	group     *errgroup.Group
}

// New builds the server and registers all routes.
func New(opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("apiserver: engine is required")
	}
	if opts.Readiness == nil {
		opts.Readiness = &NoOpReadinessChecker{}
	}

	s := &Server{
		port:      opts.Port,
		logger:    logging.GetLogger("api"),
		engine:    opts.Engine,
		router:    http.NewServeMux(),
		readiness: opts.Readiness,
		gatherer:  opts.Gatherer,
		mcp:       opts.MCP,
	}

	s.registerHandlers()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.corsMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // synthesis against a live backend can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start implements lifecycle.Component. The listener runs in the
// background; its error, if any, surfaces from Stop.
func (s *Server) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.group = new(errgroup.Group)
	s.group.Go(func() error {
		s.logger.Info("API server listening on port %d", s.port)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
			return err
		}
		return nil
	})
	return nil
}

// Stop implements lifecycle.Component. In-flight requests get until the
// context deadline to drain.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error: %v", err)
		return err
	}
	if s.group != nil {
		if err := s.group.Wait(); err != nil {
			return err
		}
	}

	s.logger.Info("API server stopped")
	return nil
}

// Name implements lifecycle.Component.
func (s *Server) Name() string {
	return "API Server"
}

// Handler returns the full middleware-wrapped handler. Exposed for
// tests and for embedding the API into another mux.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// GetPort returns the port the server listens on.
func (s *Server) GetPort() int {
	return s.port
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = WriteSuccess(w, map[string]interface{}{"status": "healthy"})
}

// handleReady reports readiness of the serving dependencies.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready := s.readiness != nil && s.readiness.IsReady()

	w.Header().Set("Content-Type", "application/json")
	if ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = WriteJSON(w, map[string]interface{}{"ready": ready})
}
