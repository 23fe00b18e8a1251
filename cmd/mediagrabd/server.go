package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/mediagrab/internal/api/v1"
	"github.com/vmunix/mediagrab/internal/cache"
	"github.com/vmunix/mediagrab/internal/config"
	"github.com/vmunix/mediagrab/internal/download"
	"github.com/vmunix/mediagrab/internal/extractor"
	"github.com/vmunix/mediagrab/internal/migrations"
	"github.com/vmunix/mediagrab/internal/server"
	"github.com/vmunix/mediagrab/internal/urlcheck"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads path, or the discovered config when path is empty.
// The defaults are used only when there is nothing to discover; a broken
// MEDIAGRAB_CONFIG is an error.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		found, err := config.Discover()
		if errors.Is(err, config.ErrNotFound) {
			return config.Default(), "", nil
		}
		if err != nil {
			return nil, "", err
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer keeps SQLite from returning "database is locked".
	db.SetMaxOpenConns(1)
	if err := migrations.Apply(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func runServer(configPath string) error {
	cfg, path, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	if path == "" {
		logger.Warn("no config file found, using defaults")
	}

	// === Extractor ===
	dl := cfg.Downloader
	client := extractor.New(extractor.Options{
		Binary:          dl.Binary,
		SocketTimeout:   dl.SocketTimeout,
		Retries:         *dl.Retries,
		FragmentRetries: *dl.FragmentRetries,
		ChunkSize:       dl.ChunkSize,
		MergeFormat:     dl.MergeFormat,
		AudioFormat:     dl.AudioFormat,
		AudioQuality:    dl.AudioQuality,
	}, logger.With("component", "extractor"))

	// === Probe cache (optional) ===
	var (
		prober     v1.Prober = client
		store      *cache.Cache
		cacheCount v1.CacheCounter
		pruner     server.Pruner
	)
	if cfg.Cache.Enabled {
		db, err := openDB(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		store = cache.New(db)
		prober = extractor.NewCached(client, store, cfg.Cache.TTL, logger.With("component", "cache"))
		cacheCount = store
		pruner = store
	}

	// === Services ===
	validator := urlcheck.New(cfg.Sources.ExtraDomains...)
	orchestrator := download.NewOrchestrator(client, prober, dl.WorkDir, logger.With("component", "download"))

	// === HTTP Setup ===
	mux := http.NewServeMux()
	apiV1, err := v1.New(v1.ServerDeps{
		Validator:  validator,
		Prober:     prober,
		Downloader: orchestrator,
		Cache:      cacheCount,
	}, v1.Config{
		Version:         version,
		ExtractorBinary: client.Binary(),
	}, logger.With("component", "api"))
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	apiV1.RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	logger.Info("server starting",
		"addr", addr,
		"config", path,
		"extractor", client.Binary(),
		"work_dir", dl.WorkDir,
		"cache", cfg.Cache.Enabled,
		"platforms", len(validator.Domains()),
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := server.NewRunner(server.Config{
		Addr:          addr,
		PruneInterval: cfg.Cache.PruneInterval,
	}, v1.LogRequests(mux, logger), pruner, logger)

	if err := runner.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
