package vllm

import (
	"fmt"
	"strings"
	"time"

	"github.com/kiranshivaraju/contractlens/internal/ai/llm"
	"github.com/kiranshivaraju/contractlens/internal/ai/openai"
	"github.com/kiranshivaraju/contractlens/internal/config"
)

// NewProvider creates an analysis client for a vLLM server. vLLM serves
// exactly the models it was started with, so the model name is required.
func NewProvider(cfg config.VLLMConfig, timeout time.Duration) (*openai.Provider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: VLLM_MODEL is not set", llm.ErrConfiguration)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/") + "/v1"
	return openai.NewCompatible("vllm", baseURL, "EMPTY", cfg.Model, timeout), nil
}
