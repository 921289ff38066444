// Package api serves a read-only HTTP view of the engine and streams
// listener notifications over a websocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/1broseidon/winstack/internal/agent"
	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/daemon"
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
)

// Engine is the read side of the daemon engine.
type Engine interface {
	Status(ctx context.Context) ([]daemon.DisplayStatus, error)
	Windows(ctx context.Context, displayID platform.DisplayID) ([]window.Info, error)
	Window(ctx context.Context, id uint32) (container.TreeEntry, error)
	Agent() *agent.Controller
}

var _ Engine = (*daemon.Engine)(nil)

type Server struct {
	server *http.Server
	engine Engine
	logger *slog.Logger
	// StreamSize bounds the pending events of one websocket subscriber.
	StreamSize int
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.logger.Debug("api request", "status", status, "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	e := json.NewEncoder(w)
	if err := e.Encode(data); err != nil {
		s.logger.Warn("api encode failed", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := wmerr.CodeOf(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, daemon.ErrWorkerStopped):
		status = http.StatusServiceUnavailable
	case code == wmerr.NullPtr, code == wmerr.InvalidDisplay, code == wmerr.DestroyedObject:
		status = http.StatusNotFound
	case code == wmerr.InvalidParam, code == wmerr.InvalidType:
		status = http.StatusBadRequest
	}
	s.jsonResponse(w, r, status, errorBody{Error: err.Error(), Code: code.String()})
}

// NewServer builds the API server for listenAddr.
func NewServer(engine Engine, listenAddr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:     engine,
		logger:     logger.With("component", "api"),
		StreamSize: 64,
	}
	s.server = &http.Server{
		Addr:              listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

// Handler returns the router serving every endpoint.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	parseID := func(r *http.Request, bits int) (uint64, bool) {
		id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, bits)
		return id, err == nil
	}

	router.HandleFunc("/displays/", func(w http.ResponseWriter, r *http.Request) {
		displays, err := s.engine.Status(r.Context())
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		s.jsonResponse(w, r, http.StatusOK, map[string]any{"items": displays})
	}).Methods("GET")

	router.HandleFunc("/displays/{id:[0-9]+}/windows", func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r, 64)
		if !ok || id == 0 {
			s.jsonResponse(w, r, http.StatusNotFound, errorBody{Error: "unknown display"})
			return
		}
		windows, err := s.engine.Windows(r.Context(), platform.DisplayID(id))
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		s.jsonResponse(w, r, http.StatusOK, map[string]any{"items": windows})
	}).Methods("GET")

	router.HandleFunc("/windows/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r, 32)
		if !ok {
			s.jsonResponse(w, r, http.StatusNotFound, errorBody{Error: "unknown window"})
			return
		}
		entry, err := s.engine.Window(r.Context(), uint32(id))
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		s.jsonResponse(w, r, http.StatusOK, map[string]any{"item": entry})
	}).Methods("GET")

	router.HandleFunc("/events", s.handleEvents)

	router.PathPrefix("/").Handler(http.NotFoundHandler())
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("API server listening", "addr", ln.Addr().String())

	errc := make(chan error, 1)
	go func() { errc <- s.server.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("API shutdown", "error", err)
		return s.server.Close()
	}
	return nil
}
