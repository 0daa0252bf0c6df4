package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kiranshivaraju/contractlens/pkg/models"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyText is returned when there is no text to analyze.
var ErrEmptyText = errors.New("contract text is empty")

// Orchestrator drives one analysis run: single pass for short contracts,
// chunk → dedup → synthesize for long ones. It holds no per-run state and is
// safe to share across contracts.
type Orchestrator struct {
	client      models.AnalysisClient
	concurrency int
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency bounds how many chunk calls run at once. Values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOrchestrator creates an Orchestrator over the given client.
func NewOrchestrator(client models.AnalysisClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:      client,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Analyze runs the full pipeline over contract text and returns one unified result.
// Any failed call fails the whole run; no partial result is returned.
// Text must contain something other than whitespace; otherwise Analyze
// returns ErrEmptyText without calling the client.
func (o *Orchestrator) Analyze(ctx context.Context, text string) (models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return models.AnalysisResult{}, ErrEmptyText
	}

	chunks := SplitIntoChunks(text)

	if len(chunks) == 1 {
		o.logger.Info("analyzing contract in a single pass",
			"estimated_tokens", EstimateTokenCount(text),
			"provider", o.client.Name())

		result, err := o.client.AnalyzeDocument(ctx, chunks[0])
		if err != nil {
			return models.AnalysisResult{}, fmt.Errorf("analyzing document: %w", err)
		}
		return result, nil
	}

	o.logger.Info("contract split into chunks",
		"total_chunks", len(chunks),
		"estimated_tokens", EstimateTokenCount(text),
		"provider", o.client.Name())

	results, err := o.analyzeChunks(ctx, chunks)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	var all []models.ClauseResult
	summaries := make([]string, len(results))
	for i, r := range results {
		all = append(all, r.Clauses...)
		summaries[i] = fmt.Sprintf("Section %d: %s", i+1, r.Summary)
	}
	clauses := DeduplicateClauses(all)

	o.logger.Info("synthesizing final analysis",
		"clauses", len(all),
		"deduplicated_clauses", len(clauses))

	synthesis, err := o.client.Synthesize(ctx, clauses, summaries)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("synthesizing analysis: %w", err)
	}

	return models.AnalysisResult{
		Summary:          synthesis.Summary,
		OverallRiskScore: synthesis.OverallRiskScore,
		RiskSummary:      synthesis.RiskSummary,
		Clauses:          clauses,
	}, nil
}

// analyzeChunks calls AnalyzeChunk for every chunk, at most o.concurrency at a
// time. Results are stored by index so their order is chunk order regardless
// of completion order. The first failure cancels calls not yet started.
func (o *Orchestrator) analyzeChunks(ctx context.Context, chunks []string) ([]models.AnalysisResult, error) {
	results := make([]models.AnalysisResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, text := range chunks {
		chunk := models.Chunk{Text: text, Index: i + 1, Total: len(chunks)}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o.logger.Info("analyzing chunk", "chunk", chunk.Index, "total_chunks", chunk.Total)

			r, err := o.client.AnalyzeChunk(gctx, chunk)
			if err != nil {
				return fmt.Errorf("analyzing chunk %d/%d: %w", chunk.Index, chunk.Total, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
