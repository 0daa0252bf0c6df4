package ai

import (
	"errors"

	"github.com/kiranshivaraju/contractlens/internal/ai/llm"
)

// Provider errors, re-exported so callers depend on this package only.
var (
	ErrConfiguration       = llm.ErrConfiguration
	ErrMalformedResponse   = llm.ErrMalformedResponse
	ErrProviderUnavailable = llm.ErrProviderUnavailable
	ErrInferenceTimeout    = llm.ErrInferenceTimeout
	ErrRateLimited         = llm.ErrRateLimited
)

// ErrRunTimeout is recorded when a whole analysis run exceeds its deadline.
var ErrRunTimeout = errors.New("analysis run timed out")
