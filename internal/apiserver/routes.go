package apiserver

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerHandlers registers all HTTP routes. Method-qualified patterns
// let the mux answer 405 for mismatched verbs.
func (s *Server) registerHandlers() {
	s.router.HandleFunc("POST /v1/sessions/{id}/turns", s.handleSubmitTurn)
	s.router.HandleFunc("POST /v1/sessions/{id}/interrupt", s.handleResolveInterrupt)
	s.router.HandleFunc("GET /v1/sessions/{id}/history", s.handleHistory)
	s.router.HandleFunc("DELETE /v1/sessions/{id}", s.handleClearSession)
	s.router.HandleFunc("GET /v1/users/{id}/memory", s.handleMemory)

	s.registerHealthEndpoints()
	s.registerMetricsHandler()
	s.registerMCPHandler()
}

// registerHealthEndpoints registers the liveness and readiness probes.
func (s *Server) registerHealthEndpoints() {
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.HandleFunc("GET /readyz", s.handleReady)
}

// registerMetricsHandler exposes the Prometheus registry when one was
// provided.
func (s *Server) registerMetricsHandler() {
	if s.gatherer == nil {
		s.logger.Debug("metrics gatherer not configured, skipping /metrics endpoint")
		return
	}
	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}

// registerMCPHandler mounts the MCP server over streamable HTTP.
func (s *Server) registerMCPHandler() {
	if s.mcp == nil {
		s.logger.Debug("MCP server not configured, skipping %s endpoint", mcpEndpointPath)
		return
	}

	streamable := server.NewStreamableHTTPServer(
		s.mcp,
		server.WithEndpointPath(mcpEndpointPath),
		server.WithStateLess(true),
	)
	s.router.Handle(mcpEndpointPath, streamable)
	s.logger.Info("MCP endpoint registered at %s", mcpEndpointPath)
}
