package server

import (
	"context"
	"net/http"
	"time"

	"tangled.org/atscan.net/urlcheck/engine"
)

// Server exposes the decision engine over HTTP
type Server struct {
	engine     *engine.Engine
	addr       string
	config     *Config
	startTime  time.Time
	handler    http.Handler
	httpServer *http.Server
}

// Config configures the server
type Config struct {
	Addr            string
	EnableWebSocket bool
	MaxBatch        int
	MaxBodyBytes    int64
	LogRequests     bool
	Version         string
	Logger          Logger
}

// Logger interface
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:5000",
		MaxBatch:     100,
		MaxBodyBytes: 1 << 20,
		Version:      "dev",
	}
}

// New creates a new HTTP server
func New(eng *engine.Engine, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.MaxBatch <= 0 {
		config.MaxBatch = 100
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}

	s := &Server{
		engine:    eng,
		addr:      config.Addr,
		config:    config,
		startTime: time.Now(),
	}

	s.handler = s.createHandler()

	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler (routes plus middleware)
func (s *Server) Handler() http.Handler {
	return s.handler
}

// createHandler creates the HTTP handler with all routes
func (s *Server) createHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHealth())
	mux.HandleFunc("POST /api/check_url", s.handleCheckURL())
	mux.HandleFunc("POST /api/check_urls", s.handleCheckURLs())
	mux.HandleFunc("GET /status", s.handleStatus())

	if s.config.EnableWebSocket {
		mux.HandleFunc("GET /ws", s.handleWebSocket())
	}

	var handler http.Handler = mux
	if s.config.LogRequests && s.config.Logger != nil {
		handler = requestLogMiddleware(handler, s.config.Logger)
	}

	return corsMiddleware(handler)
}

// GetStartTime returns when the server started
func (s *Server) GetStartTime() time.Time {
	return s.startTime
}
