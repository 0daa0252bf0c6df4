package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kiranshivaraju/contractlens/internal/ai/llm"
	"github.com/kiranshivaraju/contractlens/internal/config"
	"github.com/kiranshivaraju/contractlens/pkg/models"
	goopenai "github.com/sashabaranov/go-openai"
)

// Provider implements models.AnalysisClient over the OpenAI chat completions
// API with a forced function call. Any OpenAI-compatible endpoint works.
type Provider struct {
	client  *goopenai.Client
	name    string
	model   string
	timeout time.Duration
}

// NewProvider creates a Provider for api.openai.com, or OPENAI_BASE_URL when set.
func NewProvider(cfg config.OpenAIConfig, timeout time.Duration) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", llm.ErrConfiguration)
	}
	return NewCompatible("openai", cfg.BaseURL, cfg.APIKey, cfg.Model, timeout), nil
}

// NewCompatible creates a Provider for a self-hosted OpenAI-compatible server.
// An empty baseURL means the public OpenAI endpoint.
func NewCompatible(name, baseURL, apiKey, model string, timeout time.Duration) *Provider {
	clientCfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Provider{
		client:  goopenai.NewClientWithConfig(clientCfg),
		name:    name,
		model:   model,
		timeout: timeout,
	}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) AnalyzeDocument(ctx context.Context, text string) (models.AnalysisResult, error) {
	args, err := p.call(ctx, llm.DocumentPrompt(text), llm.MaxAnalysisTokens)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return llm.DecodeAnalysis(args)
}

func (p *Provider) AnalyzeChunk(ctx context.Context, chunk models.Chunk) (models.AnalysisResult, error) {
	args, err := p.call(ctx, llm.ChunkPrompt(chunk), llm.MaxAnalysisTokens)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return llm.DecodeAnalysis(args)
}

func (p *Provider) Synthesize(ctx context.Context, clauses []models.ClauseResult, summaries []string) (models.Synthesis, error) {
	args, err := p.call(ctx, llm.SynthesisPrompt(clauses, summaries), llm.MaxSynthesisTokens)
	if err != nil {
		return models.Synthesis{}, err
	}
	return llm.DecodeSynthesis(args)
}

// call sends one prompt and returns the raw arguments of the forced tool call.
func (p *Provider) call(ctx context.Context, prompt string, maxTokens int) ([]byte, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Tools: []goopenai.Tool{{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        llm.ToolName,
				Description: llm.ToolDescription,
				Parameters:  llm.AnalysisSchemaJSON(),
			},
		}},
		ToolChoice: goopenai.ToolChoice{
			Type:     goopenai.ToolTypeFunction,
			Function: goopenai.ToolFunction{Name: llm.ToolName},
		},
	})
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", llm.ErrMalformedResponse)
	}
	for _, tc := range resp.Choices[0].Message.ToolCalls {
		if tc.Function.Name == llm.ToolName {
			return []byte(tc.Function.Arguments), nil
		}
	}
	return nil, fmt.Errorf("%w: no %s call in response", llm.ErrMalformedResponse, llm.ToolName)
}

// classifyError maps go-openai errors to sentinel errors.
func classifyError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return llm.ClassifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return llm.ClassifyStatus(reqErr.HTTPStatusCode, reqErr.Error())
	}
	return llm.ClassifyTransport(err)
}

var _ models.AnalysisClient = (*Provider)(nil)
