// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/taskbrief/taskbrief/internal/config"
	"github.com/taskbrief/taskbrief/internal/platform/logger"
)

func TestSetupValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
		log := logger.Setup(config.ServerConfig{LogLevel: level})
		if log == nil {
			t.Errorf("Expected logger for level %q, got nil", level)
		}
	}
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	log := logger.Setup(config.ServerConfig{LogLevel: "verbose"})
	if log == nil {
		t.Fatal("Expected logger, got nil")
	}
	if !log.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Expected info level enabled on fallback")
	}
	if log.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug level disabled on fallback")
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	// Without a carried logger, FromContext falls back to the default.
	if logger.FromContext(context.Background()) == nil {
		t.Error("Expected default logger, got nil")
	}

	carried := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := logger.WithLogger(context.Background(), carried)
	if got := logger.FromContext(ctx); got != carried {
		t.Error("Expected carried logger from context")
	}
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	def := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if got := logger.FromContextOrDefault(context.Background(), def); got != def {
		t.Error("Expected provided default logger")
	}

	carried := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := logger.WithLogger(context.Background(), carried)
	if got := logger.FromContextOrDefault(ctx, def); got != carried {
		t.Error("Expected carried logger to win over default")
	}

	if logger.FromContextOrDefault(context.Background(), nil) == nil {
		t.Error("Expected slog.Default fallback, got nil")
	}
}
