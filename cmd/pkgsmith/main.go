// Command pkgsmith runs the package version lookup MCP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkgsmith/pkgsmith/internal/actions"
	"github.com/pkgsmith/pkgsmith/internal/api"
	"github.com/pkgsmith/pkgsmith/internal/config"
	"github.com/pkgsmith/pkgsmith/internal/events"
	"github.com/pkgsmith/pkgsmith/internal/logging"
	"github.com/pkgsmith/pkgsmith/internal/lookup"
	"github.com/pkgsmith/pkgsmith/internal/registry"
	"github.com/pkgsmith/pkgsmith/internal/storage"
	"github.com/pkgsmith/pkgsmith/internal/tools"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	transport := flag.String("transport", "", "MCP transport: http or stdio (overrides config)")
	port := flag.Int("port", 0, "HTTP listen port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *port != 0 {
		cfg.Port = *port
	}

	if err := run(cfg); err != nil {
		logging.Error("%v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Storage is optional; lookups still work without persistence.
	var store storage.Storage
	if cfg.DBPath != "" {
		sqlite, err := initStorage(cfg.DBPath, cfg.CacheTTL)
		if err != nil {
			logging.Warn("Failed to initialize storage (continuing without persistence): %v", err)
		} else {
			defer sqlite.Close()
			store = sqlite
			logging.Info("Storage initialized at %s", cfg.DBPath)
		}
	}

	bus := events.NewBus()
	orchestrator := lookup.NewOrchestrator(cfg.GitHubToken, lookup.Options{
		Store:    store,
		Bus:      bus,
		CacheTTL: cfg.CacheTTL,
	})
	orchestrator.StartMaintenance(0)
	defer orchestrator.Stop()

	server := api.NewServer(api.Config{
		Port:         cfg.Port,
		Orchestrator: orchestrator,
		Actions:      actions.NewFetcher(registry.NewGitHubClient(cfg.GitHubToken)),
		Mise:         tools.New(cfg.MiseBin),
		EventBus:     bus,
	})

	if cfg.Transport == "stdio" {
		return server.ServeStdio()
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	logging.Info("MCP endpoint at http://localhost:%d/mcp", cfg.Port)
	logging.Info("Health endpoint at http://localhost:%d/health", cfg.Port)
	logging.Info("Event stream at http://localhost:%d/events", cfg.Port)

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-shutdownChan:
		logging.Info("Received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logging.Info("Server stopped")
	return nil
}

// initStorage opens the SQLite database, creating its directory if needed.
func initStorage(dbPath string, cacheTTL time.Duration) (*storage.SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}
	return storage.NewSQLiteStorage(dbPath, cacheTTL)
}
