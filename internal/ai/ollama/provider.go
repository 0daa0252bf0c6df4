package ollama

import (
	"fmt"
	"strings"
	"time"

	"github.com/kiranshivaraju/contractlens/internal/ai/llm"
	"github.com/kiranshivaraju/contractlens/internal/ai/openai"
	"github.com/kiranshivaraju/contractlens/internal/config"
)

// NewProvider creates an analysis client for a local Ollama server through
// its OpenAI-compatible /v1 endpoint. Ollama ignores the API key.
func NewProvider(cfg config.OllamaConfig, timeout time.Duration) (*openai.Provider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: OLLAMA_MODEL is not set", llm.ErrConfiguration)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/") + "/v1"
	return openai.NewCompatible("ollama", baseURL, "ollama", cfg.Model, timeout), nil
}
