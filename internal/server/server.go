// Package server exposes the manager façade over HTTP with a JSON
// envelope protocol.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hipotures/todoit/internal/manager"
)

// Server wraps an http.Server around the manager façade
type Server struct {
	mgr        *manager.Manager
	logger     *zap.Logger
	addr       string
	httpServer *http.Server
	listener   net.Listener
	mu         sync.RWMutex
}

// Options configures a Server
type Options struct {
	Addr   string // listen address, e.g. "127.0.0.1:8080"
	Logger *zap.Logger
}

// New creates a Server over the given manager
func New(mgr *manager.Manager, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	addr := opts.Addr
	if addr == "" {
		addr = "127.0.0.1:8080"
	}
	return &Server{mgr: mgr, logger: logger, addr: addr}
}

// Handler returns the routed handler with request logging attached.
// Exposed separately so tests can drive it without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/lists", s.handleGetLists)
	mux.HandleFunc("POST /api/lists", s.handleCreateList)
	mux.HandleFunc("GET /api/lists/{key}", s.handleGetList)
	mux.HandleFunc("PATCH /api/lists/{key}", s.handleUpdateList)
	mux.HandleFunc("DELETE /api/lists/{key}", s.handleDeleteList)

	mux.HandleFunc("GET /api/lists/{key}/items", s.handleGetItems)
	mux.HandleFunc("POST /api/lists/{key}/items", s.handleAddItem)
	mux.HandleFunc("GET /api/lists/{key}/items/{item}", s.handleGetItem)
	mux.HandleFunc("PATCH /api/lists/{key}/items/{item}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /api/lists/{key}/items/{item}", s.handleDeleteItem)
	mux.HandleFunc("PATCH /api/lists/{key}/items/{item}/status", s.handleUpdateStatus)

	mux.HandleFunc("GET /api/lists/{key}/next", s.handleNextPending)
	mux.HandleFunc("GET /api/lists/{key}/progress", s.handleProgress)

	mux.HandleFunc("GET /api/tags", s.handleGetTags)
	mux.HandleFunc("POST /api/tags", s.handleCreateTag)

	mux.HandleFunc("POST /api/deps", s.handleAddDependency)
	mux.HandleFunc("DELETE /api/deps", s.handleRemoveDependency)

	return s.withLogging(mux)
}

// Start listens on the configured address and serves until ctx is
// cancelled. Returns http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("server listening", zap.String("addr", listener.Addr().String()))
	return s.httpServer.Serve(listener)
}

// Addr returns the bound address once Start has been called
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// statusRecorder captures the response code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// envelope is the uniform response wrapper
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(err))
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &errorBody{Kind: errorKind(err), Message: err.Error()},
	})
}

// errorKind maps manager sentinels to wire kinds
func errorKind(err error) string {
	switch {
	case errors.Is(err, manager.ErrNotFound):
		return "not_found"
	case errors.Is(err, manager.ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, manager.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, manager.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, manager.ErrHasChildren):
		return "has_children"
	case errors.Is(err, manager.ErrCannotRemoveForceTag):
		return "cannot_remove_force_tag"
	case errors.Is(err, manager.ErrWouldCreateCycle):
		return "would_create_cycle"
	case errors.Is(err, manager.ErrTagLimit):
		return "tag_limit"
	case errors.Is(err, manager.ErrStorageFailure):
		return "storage_failure"
	default:
		return "invalid_argument"
	}
}

// httpStatus maps error kinds to response codes
func httpStatus(err error) int {
	switch {
	case errors.Is(err, manager.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, manager.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, manager.ErrStorageFailure):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// decodeBody parses a JSON request body into dst
func decodeBody(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", manager.ErrInvalidArgument, err)
	}
	return nil
}
