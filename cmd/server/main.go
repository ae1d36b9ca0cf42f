// Package main implements the entry point for the taskbrief API server,
// which manages tasks and enriches them with AI-generated summaries.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/taskbrief/taskbrief/internal/config"
	"github.com/taskbrief/taskbrief/internal/platform/gemini"
	"github.com/taskbrief/taskbrief/internal/platform/logger"
	"github.com/taskbrief/taskbrief/internal/platform/openai"
	"github.com/taskbrief/taskbrief/internal/platform/postgres"
	"github.com/taskbrief/taskbrief/internal/service"
	"github.com/taskbrief/taskbrief/internal/summarizer"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run wires the application together: configuration, logging, database,
// summarizer provider, services, router and the HTTP server itself.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"summarizer_provider", cfg.Summarizer.Provider)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			appLogger.Error("failed to close database connection", "error", cerr)
		}
	}()

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sum, err := setupSummarizer(context.Background(), cfg, appLogger)
	if err != nil {
		// The service treats a nil summarizer as "not configured" and keeps
		// serving task operations, so a bad summarizer setup is not fatal.
		appLogger.Warn("summarizer unavailable, tasks will be created without summaries",
			"error", err)
		sum = nil
	}

	taskStore := postgres.NewPostgresTaskStore(db, appLogger)
	taskService, err := service.NewTaskService(taskStore, sum, cfg.Server.MaxPageSize, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	router := buildRouter(taskService, db, appLogger)
	return startHTTPServer(context.Background(), cfg, router, appLogger)
}

// setupSummarizer constructs the configured summary provider.
func setupSummarizer(
	ctx context.Context,
	cfg *config.Config,
	appLogger *slog.Logger,
) (summarizer.Summarizer, error) {
	switch cfg.Summarizer.Provider {
	case "openai":
		return openai.NewClient(cfg.Summarizer, appLogger)
	case "gemini":
		return gemini.NewGenerator(ctx, cfg.Summarizer, appLogger)
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Summarizer.Provider)
	}
}
