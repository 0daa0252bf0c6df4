// Package models contains shared data models used across the ContractLens codebase.
package models

import "context"

// AnalysisClient is the structured-extraction capability every LLM integration
// must implement. Never call a specific provider directly; inject this interface.
type AnalysisClient interface {
	// AnalyzeDocument analyzes a whole contract that fits in a single request.
	AnalyzeDocument(ctx context.Context, text string) (AnalysisResult, error)
	// AnalyzeChunk analyzes one section of a long contract. The model is told the
	// section is partial (chunk.Index of chunk.Total).
	AnalyzeChunk(ctx context.Context, chunk Chunk) (AnalysisResult, error)
	// Synthesize turns deduplicated clauses and per-chunk summaries into one verdict.
	Synthesize(ctx context.Context, clauses []ClauseResult, chunkSummaries []string) (Synthesis, error)
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string
}

// Chunk is a contiguous slice of contract text. Index is 1-based.
type Chunk struct {
	Text  string
	Index int
	Total int
}
