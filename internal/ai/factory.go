package ai

import (
	"fmt"

	"github.com/kiranshivaraju/contractlens/internal/ai/anthropic"
	"github.com/kiranshivaraju/contractlens/internal/ai/ollama"
	"github.com/kiranshivaraju/contractlens/internal/ai/openai"
	"github.com/kiranshivaraju/contractlens/internal/ai/vllm"
	"github.com/kiranshivaraju/contractlens/internal/config"
	"github.com/kiranshivaraju/contractlens/pkg/models"
)

// NewClient constructs the analysis client selected by config.
// Called once at startup. Returns ErrConfiguration when the selected
// provider is missing a credential or model.
func NewClient(cfg config.AIConfig) (models.AnalysisClient, error) {
	switch cfg.Provider {
	case "ollama":
		p, err := ollama.NewProvider(cfg.Ollama, cfg.InferenceTimeout)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "vllm":
		p, err := vllm.NewProvider(cfg.VLLM, cfg.InferenceTimeout)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		p, err := openai.NewProvider(cfg.OpenAI, cfg.InferenceTimeout)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "anthropic":
		p, err := anthropic.NewProvider(cfg.Anthropic, cfg.InferenceTimeout)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown AI provider %q: must be one of ollama, vllm, openai, anthropic", ErrConfiguration, cfg.Provider)
	}
}
