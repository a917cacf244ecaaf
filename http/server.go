// Package http serves the notes assistant API: a streaming chat endpoint,
// the uncommitted-changes view and stored sessions.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Server defaults.
const (
	DefaultMaxBodyBytes = 1 << 20
	DefaultChatRate     = 1
	DefaultChatBurst    = 5
)

// Config holds the collaborators and limits of a Server.
type Config struct {
	NotesDir  string
	Assistant nucleus.Assistant
	Sessions  nucleus.SessionStore
	Source    nucleus.DiffSource
	Parser    nucleus.DiffParser
	Logger    *slog.Logger

	ChatRate     float64 // chat requests per second
	ChatBurst    int
	MaxBodyBytes int64

	// NewID generates session ids. Defaults to random UUIDs.
	NewID func() string
}

// Server is the HTTP backend.
type Server struct {
	notesDir  string
	assistant nucleus.Assistant
	sessions  nucleus.SessionStore
	source    nucleus.DiffSource
	parser    nucleus.DiffParser
	logger    *slog.Logger

	chatLimiter  *rate.Limiter
	maxBodyBytes int64
	newID        func() string

	router *http.ServeMux
}

// NewServer creates a Server from cfg, filling unset limits with defaults.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.ChatRate <= 0 {
		cfg.ChatRate = DefaultChatRate
	}
	if cfg.ChatBurst <= 0 {
		cfg.ChatBurst = DefaultChatBurst
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.NewID == nil {
		cfg.NewID = newSessionID
	}

	s := &Server{
		notesDir:     cfg.NotesDir,
		assistant:    cfg.Assistant,
		sessions:     cfg.Sessions,
		source:       cfg.Source,
		parser:       cfg.Parser,
		logger:       cfg.Logger,
		chatLimiter:  rate.NewLimiter(rate.Limit(cfg.ChatRate), cfg.ChatBurst),
		maxBodyBytes: cfg.MaxBodyBytes,
		newID:        cfg.NewID,
		router:       http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Handle("POST /api/chat", RateLimitMiddleware(s.chatLimiter)(http.HandlerFunc(s.handleChat)))
	s.router.HandleFunc("GET /api/diff", s.handleDiff)
	s.router.HandleFunc("GET /api/sessions", s.handleListSessions)
	s.router.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger),
	)(s.router)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("server started", "addr", ln.Addr().String(), "notes_dir", s.notesDir)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, details ...string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}
