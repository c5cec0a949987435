// Package server exposes the engine's command surface and event stream over
// HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/valpere/cliptran/internal"
	"github.com/valpere/cliptran/internal/log"
	"github.com/valpere/cliptran/internal/orchestrator"
	"github.com/valpere/cliptran/internal/store"
)

// HistoryReader serves the journal endpoints.
type HistoryReader interface {
	ListHistory(ctx context.Context, f store.ListFilter) ([]internal.TranslationRecord, error)
	Stats(ctx context.Context) (*store.HistoryStats, error)
}

// Config configures a Server. Engine is required.
type Config struct {
	Addr    string
	GinMode string
	Engine  *orchestrator.Engine
	History HistoryReader
	Logger  log.Logger
}

// Server is the HTTP front end.
type Server struct {
	addr    string
	ginMode string
	engine  *orchestrator.Engine
	history HistoryReader
	logger  log.Logger
	router  *gin.Engine

	// base outlives individual requests; the clipboard monitor runs under it.
	base       context.Context
	baseCancel context.CancelFunc
}

// New builds a server and its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop{}
	}
	if cfg.GinMode == "" {
		cfg.GinMode = gin.ReleaseMode
	}

	base, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr:       cfg.Addr,
		ginMode:    cfg.GinMode,
		engine:     cfg.Engine,
		history:    cfg.History,
		logger:     cfg.Logger,
		base:       base,
		baseCancel: cancel,
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		s.baseCancel()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	s.baseCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server shutdown error: %v", err)
		return err
	}
	return <-errCh
}
