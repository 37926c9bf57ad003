// Package api provides the HTTP interface to the framing runtime: the
// one-shot pipeline and the guided dialogue endpoints.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/framing-go/application"
	"github.com/felixgeelhaar/framing-go/domain/record"
)

// Config configures the API server.
type Config struct {
	// Address is the HTTP listen address (default ":8080").
	Address string

	// EnableCORS enables Cross-Origin Resource Sharing.
	EnableCORS bool

	// ReadTimeout is the HTTP read timeout.
	ReadTimeout time.Duration

	// WriteTimeout is the HTTP write timeout.
	WriteTimeout time.Duration
}

// Server is the framing HTTP server.
type Server struct {
	config   Config
	pipeline *application.Pipeline
	engine   *application.Engine
	keywords record.KeywordSource
	records  record.Store

	httpServer *http.Server
	mux        *http.ServeMux
	mu         sync.RWMutex
}

// Option configures the server.
type Option func(*Server)

// WithKeywordSource wires the keyword database reader used by pipeline runs.
func WithKeywordSource(src record.KeywordSource) Option {
	return func(s *Server) { s.keywords = src }
}

// WithRecordStore wires the record store used by record-run requests.
func WithRecordStore(store record.Store) Option {
	return func(s *Server) { s.records = store }
}

// New creates a new API server.
func New(cfg Config, pipeline *application.Pipeline, engine *application.Engine, opts ...Option) *Server {
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	s := &Server{
		config:   cfg,
		pipeline: pipeline,
		engine:   engine,
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/run", s.handleRun)
	s.mux.HandleFunc("/api/record-run", s.handleRecordRun)

	s.mux.HandleFunc("/api/chat/start", s.handleChatStart)
	s.mux.HandleFunc("/api/chat/message", s.handleChatMessage)
	s.mux.HandleFunc("/api/chat/logic-check", s.handleLogicCheck)
	s.mux.HandleFunc("/api/chat/abstract", s.handleAbstract)
	s.mux.HandleFunc("/api/chat/profile", s.handleProfile)
	s.mux.HandleFunc("/api/chat/save", s.handleSave)
	s.mux.HandleFunc("/api/chat/sync", s.handleSync)
}

// Handler returns the full middleware-wrapped handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.mux)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// withMiddleware wraps the handler with common middleware.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.EnableCORS {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		handler.ServeHTTP(w, r)
	})
}

// handleHealth reports server liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
