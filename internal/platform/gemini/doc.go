// Package gemini provides an implementation of the summarizer.Summarizer
// interface that uses Google's Gemini API to generate task summaries.
//
// It is an infrastructure adapter: it translates between the application's
// summarization contract and the genai client library without exposing the
// external service to the core. API errors are categorized into the
// summarizer error taxonomy and transient failures are retried with the
// shared exponential-backoff policy.
package gemini
