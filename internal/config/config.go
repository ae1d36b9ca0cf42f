package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Summarizer SummarizerConfig `mapstructure:"summarizer" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port        int    `mapstructure:"port"          validate:"required,gt=0,lt=65536"`
	LogLevel    string `mapstructure:"log_level"     validate:"required,oneof=debug info warn error"`
	MaxPageSize int    `mapstructure:"max_page_size" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// SummarizerConfig contains the settings for the external text-generation
// service used to enrich tasks with summaries.
type SummarizerConfig struct {
	// Provider selects the summarizer backend: "openai" (any
	// chat-completions-compatible endpoint) or "gemini".
	Provider string `mapstructure:"provider" validate:"required,oneof=openai gemini"`

	// Endpoint is the full URL of the chat-completions endpoint.
	// Only used by the openai provider.
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Provider openai"`

	// APIKey is the bearer credential for the summarizer service.
	APIKey string `mapstructure:"api_key"`

	// Model names the generation model to request.
	Model string `mapstructure:"model" validate:"required"`

	// TimeoutSeconds bounds each individual attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"required,gt=0"`

	// MaxRetries is the total number of attempts per summarize call.
	MaxRetries int `mapstructure:"max_retries" validate:"required,gt=0"`
}
