package summarizer

import "errors"

// Common errors returned by summarizer implementations.
var (
	// ErrTransientFailure is returned for outcomes likely to succeed on retry:
	// timeouts, network-level connectivity failures, rate limits and
	// 5xx-class responses. Returned only after the retry policy is exhausted.
	ErrTransientFailure = errors.New("transient summarizer failure")

	// ErrRequestRejected is returned when the service rejects the request as
	// malformed (4xx-class excluding rate limit). Never retried.
	ErrRequestRejected = errors.New("summarizer rejected the request")

	// ErrUnauthorized is returned when the bearer credential is rejected.
	// Never retried.
	ErrUnauthorized = errors.New("summarizer authentication rejected")

	// ErrInvalidResponse is returned when a 2xx response cannot be
	// deserialized or carries no generated text. Never retried.
	ErrInvalidResponse = errors.New("invalid response from summarizer")

	// ErrInvalidConfig is returned when a summarizer is constructed with
	// invalid configuration.
	ErrInvalidConfig = errors.New("invalid summarizer configuration")
)

// IsPermanent reports whether the error is classified as certain to repeat
// on retry. Anything not permanent is treated as transient.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrRequestRejected) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrInvalidConfig)
}
