// Package server exposes a [pipeline.Runner] over HTTP for the rendering
// collaborator.
//
// Routes:
//
//	POST /v1/recompute   apply a {"source", "result"} frame, returns the response
//	GET  /v1/graph       current graph as JSON
//	GET  /v1/graph.dot   current graph as Graphviz DOT
//	GET  /v1/graph.svg   current graph as SVG (cached by graph hash)
//	PUT  /v1/viewport    {"width", "height", "split"}, re-lays out the current snapshot
//	GET  /healthz        liveness and build info
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/memlayout/pkg/buildinfo"
	apperr "github.com/matzehuels/memlayout/pkg/errors"
	"github.com/matzehuels/memlayout/pkg/layout"
	"github.com/matzehuels/memlayout/pkg/pipeline"
)

const (
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes = 4 << 20

	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:7878"

	shutdownTimeout = 5 * time.Second
)

// Server serves one runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server. If logger is nil, the runner's logger is used.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/recompute", s.handleRecompute)
		r.Get("/graph", s.handleExport(pipeline.FormatJSON, "application/json"))
		r.Get("/graph.dot", s.handleExport(pipeline.FormatDOT, "text/vnd.graphviz"))
		r.Get("/graph.svg", s.handleExport(pipeline.FormatSVG, "image/svg+xml"))
		r.Put("/viewport", s.handleViewport)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	var f pipeline.Frame
	if err := decodeBody(w, r, &f); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.runner.Recompute(r.Context(), f))
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var geo layout.Geometry
	if err := decodeBody(w, r, &geo); err != nil {
		s.writeError(w, err)
		return
	}
	st, err := s.runner.SetViewport(r.Context(), geo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.NewResponse(st, nil))
}

func (s *Server) handleExport(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artifacts, err := s.runner.Render(r.Context(), []string{format})
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("ETag", `"`+artifacts.GraphHash+`"`)
		if match := r.Header.Get("If-None-Match"); match == `"`+artifacts.GraphHash+`"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		_, _ = w.Write(artifacts.Data[format])
	}
}

// =============================================================================
// Helpers
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.ErrCodeInvalidInput, "request body is empty")
		}
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(apperr.GetCode(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]any{"error": pipeline.NewErrorBody(err)})
}

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidFormat, apperr.ErrCodeInvalidViewport,
		apperr.ErrCodeInvalidConfig, apperr.ErrCodeInvalidTheme:
		return http.StatusBadRequest
	case apperr.ErrCodeNotFound, apperr.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequests logs one line per request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
