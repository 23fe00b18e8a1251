// Package server runs the HTTP listener and background maintenance.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pruner removes expired cache entries.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Config for the runner.
type Config struct {
	Addr            string
	PruneInterval   time.Duration
	ShutdownTimeout time.Duration
}

// Runner manages the server components.
type Runner struct {
	config  Config
	handler http.Handler
	pruner  Pruner
	logger  *slog.Logger
}

// NewRunner creates a new runner. pruner may be nil.
func NewRunner(cfg Config, handler http.Handler, pruner Pruner, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &Runner{
		config:  cfg,
		handler: handler,
		pruner:  pruner,
		logger:  logger,
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return r.Serve(ctx, ln)
}

// Serve runs all components on ln.
// It blocks until the context is canceled or a component fails.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		r.logger.Info("http server stopped")
		return nil
	})

	if r.pruner != nil && r.config.PruneInterval > 0 {
		g.Go(func() error {
			r.runPruner(ctx)
			return nil
		})
	}

	return g.Wait()
}

func (r *Runner) runPruner(ctx context.Context) {
	log := r.logger.With("component", "pruner")
	ticker := time.NewTicker(r.config.PruneInterval)
	defer ticker.Stop()

	log.Info("pruner started", "interval", r.config.PruneInterval.String())
	r.prune(ctx, log)

	for {
		select {
		case <-ctx.Done():
			log.Info("pruner stopped")
			return
		case <-ticker.C:
			r.prune(ctx, log)
		}
	}
}

func (r *Runner) prune(ctx context.Context, log *slog.Logger) {
	n, err := r.pruner.Prune(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("prune failed", "error", err)
		}
		return
	}
	if n > 0 {
		log.Debug("pruned expired entries", "count", n)
	}
}
