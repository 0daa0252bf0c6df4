package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kiranshivaraju/contractlens/internal/ai/llm"
	"github.com/kiranshivaraju/contractlens/internal/config"
	"github.com/kiranshivaraju/contractlens/pkg/models"
)

// Provider implements models.AnalysisClient using the Anthropic Messages API
// with a forced tool_use block.
type Provider struct {
	client sdk.Client
	model  string
	tool   sdk.ToolUnionParam
}

// NewProvider creates a Provider. Fails with llm.ErrConfiguration without an API key.
// Retries are disabled; a failed call fails the run.
func NewProvider(cfg config.AnthropicConfig, timeout time.Duration) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", llm.ErrConfiguration)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	return &Provider{
		client: sdk.NewClient(opts...),
		model:  cfg.Model,
		tool:   analysisTool(),
	}, nil
}

func analysisTool() sdk.ToolUnionParam {
	schema := llm.AnalysisSchema()
	required, _ := schema["required"].([]string)
	return sdk.ToolUnionParam{OfTool: &sdk.ToolParam{
		Name:        llm.ToolName,
		Description: sdk.String(llm.ToolDescription),
		InputSchema: sdk.ToolInputSchemaParam{
			Properties: schema["properties"],
			Required:   required,
		},
	}}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) AnalyzeDocument(ctx context.Context, text string) (models.AnalysisResult, error) {
	input, err := p.call(ctx, llm.DocumentPrompt(text), llm.MaxAnalysisTokens)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return llm.DecodeAnalysis(input)
}

func (p *Provider) AnalyzeChunk(ctx context.Context, chunk models.Chunk) (models.AnalysisResult, error) {
	input, err := p.call(ctx, llm.ChunkPrompt(chunk), llm.MaxAnalysisTokens)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return llm.DecodeAnalysis(input)
}

func (p *Provider) Synthesize(ctx context.Context, clauses []models.ClauseResult, summaries []string) (models.Synthesis, error) {
	input, err := p.call(ctx, llm.SynthesisPrompt(clauses, summaries), llm.MaxSynthesisTokens)
	if err != nil {
		return models.Synthesis{}, err
	}
	return llm.DecodeSynthesis(input)
}

// call sends one prompt and returns the input of the forced tool_use block.
func (p *Provider) call(ctx context.Context, prompt string, maxTokens int) ([]byte, error) {
	msg, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:      sdk.Model(p.model),
		MaxTokens:  int64(maxTokens),
		Tools:      []sdk.ToolUnionParam{p.tool},
		ToolChoice: sdk.ToolChoiceParamOfTool(llm.ToolName),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, classifyError(err)
	}

	for _, block := range msg.Content {
		if block.Type != "tool_use" {
			continue
		}
		if tool := block.AsToolUse(); tool.Name == llm.ToolName {
			return tool.Input, nil
		}
	}
	return nil, fmt.Errorf("%w: no tool_use block in response", llm.ErrMalformedResponse)
}

// classifyError maps SDK errors to sentinel errors.
func classifyError(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return llm.ClassifyStatus(apiErr.StatusCode, apiErr.Error())
	}
	return llm.ClassifyTransport(err)
}

var _ models.AnalysisClient = (*Provider)(nil)
