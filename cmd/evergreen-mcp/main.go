// Package main provides the entry point for the evergreen-mcp MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/config"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/metrics"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/server"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/tools"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() { _ = cleanup() }()

	projectHint := cfg.ProjectHint()
	logger.Info("evergreen-mcp starting",
		"version", version,
		"endpoint", cfg.Endpoint,
		"user", cfg.User,
		"auth", authMode(cfg),
		"project", projectHint,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	collector := metrics.NewCollector()
	evg, err := client.New(client.Config{
		Endpoint:    cfg.Endpoint,
		User:        cfg.User,
		APIKey:      cfg.APIKey,
		BearerToken: cfg.BearerToken,
		Timeout:     cfg.QueryTimeout,
		UserAgent:   "evergreen-mcp-go/" + version,
	}, client.WithRecorder(collector), client.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create evergreen client", "error", err)
		os.Exit(1)
	}

	// Create and setup server
	srv := server.New(version, logger)
	srv.Setup()

	deps := &tools.Dependencies{
		Services: service.New(evg, service.Options{
			Concurrency: cfg.MaxConcurrency,
			Logger:      logger,
		}),
		Metrics:     collector,
		Logger:      logger,
		UserID:      cfg.User,
		ProjectHint: projectHint,
	}
	tools.RegisterAll(srv.MCPServer(), deps)
	logger.Info("tools registered", "count", 6)

	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	runErr := srv.Run(ctx)

	snap := collector.Snapshot()
	logger.Info("query statistics",
		"uptime_s", int64(snap.UptimeSeconds),
		"queries", snap.TotalQueries,
		"errors", snap.TotalErrors)
	for _, q := range snap.Queries {
		logger.Debug("query stats", "query", q.Query, "count", q.Count, "errors", q.Errors, "avg_ms", q.AvgTimeMs)
	}

	if runErr != nil && ctx.Err() == nil {
		logger.Error("server error", "error", runErr)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func authMode(cfg config.Config) string {
	switch {
	case cfg.UseBearer():
		return "bearer"
	case cfg.HasCredentials():
		return "api_key"
	default:
		return "none"
	}
}
