// Package summarizer defines the boundary between the application core and
// external text-generation services. Providers live under internal/platform;
// the task service depends only on this interface and error taxonomy.
package summarizer

import "context"

// Summarizer produces a short machine-generated summary of a task.
// Implementations own per-attempt timeouts and retry policy; a call either
// returns a non-empty summary or an error from this package's taxonomy.
// Implementations never persist anything and never mutate shared state.
type Summarizer interface {
	// Summarize generates a summary for the given task title and description.
	//
	// Returns a non-empty summary string on success, or an error wrapping
	// one of the sentinel errors in errors.go. Errors classified transient
	// have already been retried per policy before being returned.
	Summarize(ctx context.Context, title, description string) (string, error)
}
