// Package api exposes the MCP tool surface over streamable HTTP or stdio,
// plus plain HTTP endpoints for health checks and lookup progress events.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/pkgsmith/pkgsmith/internal/actions"
	"github.com/pkgsmith/pkgsmith/internal/events"
	"github.com/pkgsmith/pkgsmith/internal/logging"
	"github.com/pkgsmith/pkgsmith/internal/lookup"
	"github.com/pkgsmith/pkgsmith/internal/output"
	"github.com/pkgsmith/pkgsmith/internal/tools"
)

// ServiceName identifies this service in health responses.
const ServiceName = "pkgsmith"

// Server hosts the MCP server and its HTTP side endpoints.
type Server struct {
	orchestrator *lookup.Orchestrator
	actions      *actions.Fetcher
	mise         *tools.Mise
	eventBus     *events.Bus

	mcpServer  *server.MCPServer
	httpServer *http.Server
}

// Config holds configuration for the API server.
type Config struct {
	Port         int
	Orchestrator *lookup.Orchestrator
	Actions      *actions.Fetcher
	Mise         *tools.Mise
	EventBus     *events.Bus
}

// NewServer creates the MCP server and mounts it on an HTTP mux next to
// /health and /events.
func NewServer(cfg Config) *Server {
	s := &Server{
		orchestrator: cfg.Orchestrator,
		actions:      cfg.Actions,
		mise:         cfg.Mise,
		eventBus:     cfg.EventBus,
	}

	s.mcpServer = server.NewMCPServer(ServiceName, output.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools(s.mcpServer)

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := ChainMiddleware(mux,
		corsMiddleware,
		CorrelationIDMiddleware,
		RequestLoggingMiddleware,
	)

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// registerRoutes sets up the HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	streamable := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath("/mcp"),
	)
	mux.Handle("/mcp", streamable)
	mux.Handle("/mcp/", streamable)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /events", s.handleEvents)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.Info("Starting MCP server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// ServeStdio runs the MCP server over stdin/stdout instead of HTTP.
func (s *Server) ServeStdio() error {
	logging.Info("Starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down MCP server")
	return s.httpServer.Shutdown(ctx)
}
