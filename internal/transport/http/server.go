package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"valentinelink/internal/game"
	"valentinelink/internal/metrics"
	"valentinelink/internal/service"
	"valentinelink/internal/transport/ws"
)

// Server represents the HTTP server
type Server struct {
	handler *Handler
	hub     *ws.Hub
	server  *http.Server
	port    string
}

// NewServer creates a new HTTP server exposing the link API, the game
// WebSocket endpoint and the metrics endpoint.
func NewServer(links service.LinkService, settings game.Settings, m *metrics.Metrics, gatherer prometheus.Gatherer, port string, verbose bool) *Server {
	handler := NewHandler(links, m)
	hub := ws.NewHub(links, settings, m)

	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/valentine", handler.ValentineHandler)

	// Real-time game endpoint
	mux.HandleFunc("/api/game/ws", hub.ServeWS)

	// Operational endpoints
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Wrap with middlewares
	var finalHandler http.Handler = mux

	// Add logging middleware first (outermost)
	if verbose {
		loggingMiddleware := NewLoggingMiddleware(verbose)
		finalHandler = loggingMiddleware.Middleware(finalHandler)
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		hub:     hub,
		server:  server,
		port:    port,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Server starting on port %s", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its game sessions
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Server shutting down...")
	s.hub.Shutdown()
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}

// Handler returns the server handler (useful for testing)
func (s *Server) Handler() *Handler {
	return s.handler
}
