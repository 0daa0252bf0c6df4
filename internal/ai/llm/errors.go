// Package llm holds what every analysis client shares: the tool schema,
// prompt construction, strict response decoding and the error taxonomy.
package llm

import "errors"

var (
	// ErrConfiguration means the provider cannot be used as configured,
	// e.g. a missing or rejected API key. Not retryable.
	ErrConfiguration       = errors.New("ai provider not configured")
	ErrMalformedResponse   = errors.New("ai provider returned malformed response")
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrRateLimited         = errors.New("ai provider rate limited")
)
