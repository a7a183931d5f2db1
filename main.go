// Command druginfo-api serves formatted drug information over HTTP in front
// of the inference backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/druginfo/backend"
	"github.com/giygas/druginfo/config"
	"github.com/giygas/druginfo/data"
	"github.com/giygas/druginfo/handlers"
	"github.com/giygas/druginfo/health"
	"github.com/giygas/druginfo/logging"
	"github.com/giygas/druginfo/scheduler"
	"github.com/giygas/druginfo/server"
	"github.com/giygas/druginfo/validation"
)

// probeTimeout bounds a single reachability check
const probeTimeout = 5 * time.Second

func main() {
	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(cfg.LogDir, cfg.Env, cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logging.Close() }()

	logging.Info("Configuration loaded",
		"env", cfg.Env.String(),
		"backend_url", cfg.BackendURL,
		"backend_timeout", cfg.BackendTimeout.String(),
		"cache_ttl", cfg.CacheTTL.String(),
		"cache_max_entries", cfg.CacheMaxEntries)

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	cache := data.NewResultCache(cfg.CacheTTL, cfg.CacheMaxEntries)
	prober := scheduler.NewProbeState(client, probeTimeout)

	sched := scheduler.NewScheduler(cache, prober, cfg.CachePruneInterval, cfg.BackendProbeInterval)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	handler := handlers.NewHTTPHandler(
		client,
		cache,
		validation.NewQueryValidator(cfg.MaxUploadSize),
		health.NewHealthChecker(cache, prober, cfg.BackendProbeInterval),
		cfg.MaxUploadSize,
	)
	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown failed", "error", err)
	}
}
