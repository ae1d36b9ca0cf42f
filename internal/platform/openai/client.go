// Package openai implements the summarizer.Summarizer interface against any
// OpenAI-compatible chat-completions endpoint: one bearer-authenticated JSON
// POST per attempt, wrapped in the shared retry policy.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taskbrief/taskbrief/internal/config"
	"github.com/taskbrief/taskbrief/internal/summarizer"
)

// maxResponseTokens bounds the generated summary length.
const maxResponseTokens = 150

// systemPrompt frames the generation request.
const systemPrompt = "You are a helpful assistant that creates concise task summaries."

// userPromptFormat templates the per-task prompt. The description is the
// summarization input; the title gives the model context.
const userPromptFormat = `You are a task management assistant. Generate a brief, actionable summary (2-3 sentences max) for the following task.

Task Title: %s

Task Description: %s

Summary:`

// Client is a summarizer backed by an OpenAI-compatible chat-completions
// endpoint. Each Summarize call issues up to policy.MaxAttempts requests,
// each bounded by its own timeout.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	policy     summarizer.RetryPolicy
}

// chatRequest is the JSON body of one generation request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the response body this client reads.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new Client from the summarizer configuration.
// Returns an error wrapping summarizer.ErrInvalidConfig if the endpoint,
// credential or model is missing.
func NewClient(cfg config.SummarizerConfig, logger *slog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint cannot be empty", summarizer.ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", summarizer.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model cannot be empty", summarizer.ErrInvalidConfig)
	}

	if logger == nil {
		logger = slog.Default()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		logger:     logger.With(slog.String("component", "openai_summarizer")),
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		policy:     summarizer.DefaultRetryPolicy(cfg.MaxRetries),
	}, nil
}

// Ensure Client implements summarizer.Summarizer
var _ summarizer.Summarizer = (*Client)(nil)

// Summarize implements summarizer.Summarizer.
func (c *Client) Summarize(ctx context.Context, title, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("%w: description cannot be empty", summarizer.ErrRequestRejected)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptFormat, title, description)},
		},
		MaxTokens:   maxResponseTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal summarize request: %w", err)
	}

	var summary string
	err = c.policy.Retry(ctx, c.logger, func(ctx context.Context) error {
		summary, err = c.attempt(ctx, body)
		return err
	})
	if err != nil {
		return "", err
	}

	c.logger.InfoContext(ctx, "summary generated",
		slog.Int("summary_length", len(summary)))
	return summary, nil
}

// attempt performs a single request against the endpoint and classifies the
// outcome. Errors wrapping a permanent sentinel stop the retry loop; any
// other error is treated as transient.
func (c *Client) attempt(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", summarizer.ErrRequestRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and network-level failures are transient.
		return "", fmt.Errorf("summarizer request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.WarnContext(ctx, "failed to close response body",
				slog.String("error", cerr.Error()))
		}
	}()

	if err := classifyStatus(resp.StatusCode); err != nil {
		// Drain so the connection can be reused across attempts.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", err
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", summarizer.ErrInvalidResponse, err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", summarizer.ErrInvalidResponse)
	}

	summary := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("%w: empty generated text", summarizer.ErrInvalidResponse)
	}

	return summary, nil
}

// classifyStatus maps an HTTP status to the summarizer error taxonomy.
// Transient: 408, 429 and 5xx. Permanent: 401/403 and the remaining 4xx.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", summarizer.ErrUnauthorized, status)
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		return fmt.Errorf("summarizer throttled or timed out: status %d", status)
	case status >= 500:
		return fmt.Errorf("summarizer server error: status %d", status)
	case status >= 400:
		return fmt.Errorf("%w: status %d", summarizer.ErrRequestRejected, status)
	default:
		return fmt.Errorf("%w: unexpected status %d", summarizer.ErrInvalidResponse, status)
	}
}
