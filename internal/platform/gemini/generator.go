package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taskbrief/taskbrief/internal/config"
	"github.com/taskbrief/taskbrief/internal/summarizer"
	"google.golang.org/genai"
)

// promptFormat templates the per-task prompt sent to the model.
const promptFormat = `You are a task management assistant. Generate a brief, actionable summary (2-3 sentences max) for the following task.

Task Title: %s

Task Description: %s

Summary:`

// Generator implements the summarizer.Summarizer interface using Google's
// Gemini API. Each Summarize call issues up to policy.MaxAttempts requests,
// each bounded by its own timeout.
type Generator struct {
	logger  *slog.Logger
	client  *genai.Client
	model   string
	timeout time.Duration
	policy  summarizer.RetryPolicy
}

// NewGenerator creates a new Generator with the provided configuration.
// Returns an error wrapping summarizer.ErrInvalidConfig if the API key or
// model name is missing, or if the genai client cannot be constructed.
func NewGenerator(ctx context.Context, cfg config.SummarizerConfig, logger *slog.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", summarizer.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", summarizer.ErrInvalidConfig)
	}

	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", summarizer.ErrInvalidConfig, err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Generator{
		logger:  logger.With(slog.String("component", "gemini_summarizer")),
		client:  client,
		model:   cfg.Model,
		timeout: timeout,
		policy:  summarizer.DefaultRetryPolicy(cfg.MaxRetries),
	}, nil
}

// Ensure Generator implements summarizer.Summarizer
var _ summarizer.Summarizer = (*Generator)(nil)

// Summarize implements summarizer.Summarizer.
func (g *Generator) Summarize(ctx context.Context, title, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("%w: description cannot be empty", summarizer.ErrRequestRejected)
	}

	prompt := fmt.Sprintf(promptFormat, title, description)

	var summary string
	err := g.policy.Retry(ctx, g.logger, func(ctx context.Context) error {
		var err error
		summary, err = g.attempt(ctx, prompt)
		return err
	})
	if err != nil {
		return "", err
	}

	g.logger.InfoContext(ctx, "summary generated",
		slog.Int("summary_length", len(summary)))
	return summary, nil
}

// attempt performs a single generation request and classifies the outcome.
func (g *Generator) attempt(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classifyAPIError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", summarizer.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", summarizer.ErrInvalidResponse)
	}

	summary := strings.TrimSpace(resp.Text())
	if summary == "" {
		return "", fmt.Errorf("%w: empty generated text", summarizer.ErrInvalidResponse)
	}

	return summary, nil
}

// classifyAPIError maps genai client errors to the summarizer taxonomy.
// Rate limits and server errors stay transient; auth rejections and other
// 4xx responses are permanent. Errors without an API status code (network
// failures, timeouts) are transient.
func classifyAPIError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("gemini request failed: %w", err)
	}

	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", summarizer.ErrUnauthorized, err)
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500:
		return fmt.Errorf("gemini throttled or unavailable: %w", err)
	case apiErr.Code >= 400:
		return fmt.Errorf("%w: %v", summarizer.ErrRequestRejected, err)
	default:
		return fmt.Errorf("gemini request failed: %w", err)
	}
}
