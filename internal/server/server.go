// Package server previews the published archive over HTTP.
package server

import (
	"context"
	"dailydigest/internal/config"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 30 * time.Second
)

// Server serves the site output directory read-only
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	fs         afero.Fs
	dir        string
	config     config.Server
	log        *slog.Logger
}

// New creates a server for the archive under dir on fs
func New(fs afero.Fs, dir string, cfg config.Server, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		router: chi.NewRouter(),
		fs:     afero.NewReadOnlyFs(afero.NewBasePathFs(fs, dir)),
		dir:    dir,
		config: cfg,
		log:    log,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// NewOnDisk creates a server for a directory on the operating system filesystem
func NewOnDisk(dir string, cfg config.Server, log *slog.Logger) *Server {
	return New(afero.NewOsFs(), dir, cfg, log)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	files := http.FileServer(afero.NewHttpFs(s.fs).Dir("/"))
	s.router.With(noCache).Get("/", files.ServeHTTP)
	s.router.With(noCache).Get("/rss.xml", s.handleFeed(files))
	s.router.Get("/*", files.ServeHTTP)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.Info("Starting archive preview server", "addr", s.httpServer.Addr, "dir", s.dir)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
