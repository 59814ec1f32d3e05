// ABOUTME: HTTP server assembly for the fold-drive API
// ABOUTME: Wires auth middleware around the API routes and handles shutdown

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/fold-drive/internal/auth"
)

// Server owns the HTTP listener. The /health endpoint is open; everything
// under /api/ requires a valid bearer token.
type Server struct {
	addr     string
	api      *API
	verifier auth.TokenVerifier
	logger   *slog.Logger
}

// NewServer creates the server. It does not listen until Run is called.
func NewServer(addr string, api *API, verifier auth.TokenVerifier) *Server {
	return &Server{
		addr:     addr,
		api:      api,
		verifier: verifier,
		logger:   slog.Default().With("component", "server"),
	}
}

// Handler builds the full route tree, including auth middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	apiMux := http.NewServeMux()
	s.api.RegisterRoutes(apiMux)
	mux.Handle("/api/", auth.Middleware(s.verifier)(apiMux))

	return mux
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("serving HTTP: %w", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
