package mocks

import (
	"context"
	"sync"

	"github.com/taskbrief/taskbrief/internal/summarizer"
)

// MockSummarizer implements summarizer.Summarizer for testing
type MockSummarizer struct {
	// SummarizeFn allows test cases to mock the Summarize behavior
	SummarizeFn func(ctx context.Context, title, description string) (string, error)

	// Default response values
	Summary string
	Err     error

	// Call tracking for verification
	SummarizeCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Summarize was called
		Count int

		// Titles contains all titles passed to Summarize calls
		Titles []string

		// Descriptions contains all descriptions passed to Summarize calls
		Descriptions []string
	}
}

// Ensure MockSummarizer implements the interface
var _ summarizer.Summarizer = (*MockSummarizer)(nil)

// Summarize implements the summarizer.Summarizer interface
func (m *MockSummarizer) Summarize(ctx context.Context, title, description string) (string, error) {
	m.SummarizeCalls.mu.Lock()
	m.SummarizeCalls.Count++
	m.SummarizeCalls.Titles = append(m.SummarizeCalls.Titles, title)
	m.SummarizeCalls.Descriptions = append(m.SummarizeCalls.Descriptions, description)
	m.SummarizeCalls.mu.Unlock()

	if m.SummarizeFn != nil {
		return m.SummarizeFn(ctx, title, description)
	}

	return m.Summary, m.Err
}

// CallCount returns how many times Summarize has been called
func (m *MockSummarizer) CallCount() int {
	m.SummarizeCalls.mu.Lock()
	defer m.SummarizeCalls.mu.Unlock()
	return m.SummarizeCalls.Count
}

// NewMockSummarizerWithSummary creates a MockSummarizer that returns the given text
func NewMockSummarizerWithSummary(summary string) *MockSummarizer {
	return &MockSummarizer{Summary: summary}
}

// NewMockSummarizerWithError creates a MockSummarizer that always fails
func NewMockSummarizerWithError(err error) *MockSummarizer {
	return &MockSummarizer{Err: err}
}
