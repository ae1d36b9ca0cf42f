package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// TASKBRIEF_DATABASE_URL overrides database.url.
const envPrefix = "TASKBRIEF"

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded into the environment first,
// if present. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	// Populate the environment from .env when one exists. Missing files are
	// fine; the environment and config file carry the same keys.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Defaults for everything that has a sensible one. The database URL and
	// summarizer credential deliberately have none.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.max_page_size", 100)
	v.SetDefault("summarizer.provider", "openai")
	v.SetDefault("summarizer.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("summarizer.model", "gpt-4o-mini")
	v.SetDefault("summarizer.timeout_seconds", 30)
	v.SetDefault("summarizer.max_retries", 3)

	// Registered with empty defaults so AutomaticEnv can bind them; validation
	// rejects the config when they end up unset.
	v.SetDefault("database.url", "")
	v.SetDefault("summarizer.api_key", "")

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables with the TASKBRIEF_ prefix override everything;
	// nested keys use underscores (TASKBRIEF_SUMMARIZER_API_KEY).
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
