package vllm

import (
	"testing"
	"time"

	"github.com/kiranshivaraju/contractlens/internal/ai/llm"
	"github.com/kiranshivaraju/contractlens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(config.VLLMConfig{BaseURL: "http://vllm:8000"}, time.Second)
	assert.ErrorIs(t, err, llm.ErrConfiguration)

	p, err := NewProvider(config.VLLMConfig{BaseURL: "http://vllm:8000", Model: "mistral-7b"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "vllm", p.Name())
}
