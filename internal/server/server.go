// Package server exposes generation, section regeneration and the record history over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Hustada/prompt-architect/internal/llm"
	"github.com/Hustada/prompt-architect/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolver returns the generator for a model name; an empty name selects the default.
type Resolver func(ctx context.Context, model string) (llm.Generator, error)

type Options struct {
	AllowedOrigins []string
	// Mode is the gin mode ("debug", "release", "test"); empty keeps gin's current mode.
	Mode string
}

type Server struct {
	resolve Resolver
	store   storage.RecordStore
	logger  *slog.Logger
	router  *gin.Engine
	now     func() time.Time
}

func New(resolve Resolver, store storage.RecordStore, logger *slog.Logger, opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		resolve: resolve,
		store:   store,
		logger:  logger,
		router:  gin.New(),
		now:     time.Now,
	}
	s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) {
	r := s.router
	r.Use(s.recovery(), requestID(), corsMiddleware(opts.AllowedOrigins), metricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/generate", s.handleGenerate)
	api.POST("/regenerate", s.handleRegenerate)
	api.POST("/sections", s.handleSections)
	api.GET("/records", s.handleListRecords)
	api.GET("/records/:id", s.handleGetRecord)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	}
}
