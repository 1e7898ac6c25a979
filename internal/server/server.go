// Package server exposes the dispatch core over HTTP: a send endpoint, a
// health check, and the metrics endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shaharia-lab/mailroom/internal/dispatch"
	"github.com/shaharia-lab/mailroom/internal/metrics"
	"github.com/shaharia-lab/mailroom/internal/template"
	"github.com/shaharia-lab/mailroom/internal/transport"
)

// Server is the HTTP surface of the dispatch core.
type Server struct {
	pipeline   *dispatch.Pipeline
	port       int
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a new Server around the pipeline.
func New(pipeline *dispatch.Pipeline, port int, logger *slog.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		port:     port,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Post("/api/send", s.handleSend)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// sendRequest is the POST /api/send payload. Exactly one of RecipientID and
// Address must be set.
type sendRequest struct {
	Template    string         `json:"template"`
	RecipientID string         `json:"recipient_id,omitempty"`
	Address     string         `json:"address,omitempty"`
	Lang        string         `json:"lang,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
}

type sendResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, sendResponse{Status: "error", Error: "invalid JSON body"})
		return
	}
	if req.Template == "" {
		writeJSON(w, http.StatusBadRequest, sendResponse{Status: "error", Error: "template is required"})
		return
	}

	var (
		outcome dispatch.Outcome
		err     error
	)
	switch {
	case req.RecipientID != "":
		outcome, err = s.pipeline.SendToIdentity(r.Context(), req.Template, req.RecipientID, req.Params)
	case req.Address != "":
		outcome, err = s.pipeline.SendToAddress(r.Context(), req.Template, req.Address, req.Lang, req.Params)
	default:
		writeJSON(w, http.StatusBadRequest, sendResponse{Status: "error", Error: "recipient_id or address is required"})
		return
	}

	if err != nil {
		writeJSON(w, statusForError(err), sendResponse{Status: string(dispatch.StatusFailed), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sendResponse{Status: string(outcome.Status)})
}

// statusForError maps the dispatch error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, template.ErrRender):
		return http.StatusUnprocessableEntity
	case errors.Is(err, transport.ErrAgentUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// requestLogger is a chi middleware that logs each incoming request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
