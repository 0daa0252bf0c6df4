package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/kiranshivaraju/contractlens/internal/ai/llm"
	"github.com/kiranshivaraju/contractlens/pkg/models"
)

// Calls counts invocations per operation.
type Calls struct {
	Document   int
	Chunk      int
	Synthesize int
}

// Total is the number of model calls made so far.
func (c Calls) Total() int { return c.Document + c.Chunk + c.Synthesize }

// MockClient satisfies models.AnalysisClient for testing.
// It is safe for concurrent use.
type MockClient struct {
	Name_               string
	AnalyzeDocumentFunc func(ctx context.Context, text string) (models.AnalysisResult, error)
	AnalyzeChunkFunc    func(ctx context.Context, chunk models.Chunk) (models.AnalysisResult, error)
	SynthesizeFunc      func(ctx context.Context, clauses []models.ClauseResult, summaries []string) (models.Synthesis, error)

	mu        sync.Mutex
	calls     Calls
	chunks    []models.Chunk
	summaries []string
}

func (m *MockClient) Name() string { return m.Name_ }

func (m *MockClient) AnalyzeDocument(ctx context.Context, text string) (models.AnalysisResult, error) {
	m.mu.Lock()
	m.calls.Document++
	m.mu.Unlock()

	if m.AnalyzeDocumentFunc != nil {
		return m.AnalyzeDocumentFunc(ctx, text)
	}
	return models.AnalysisResult{}, nil
}

func (m *MockClient) AnalyzeChunk(ctx context.Context, chunk models.Chunk) (models.AnalysisResult, error) {
	m.mu.Lock()
	m.calls.Chunk++
	m.chunks = append(m.chunks, chunk)
	m.mu.Unlock()

	if m.AnalyzeChunkFunc != nil {
		return m.AnalyzeChunkFunc(ctx, chunk)
	}
	return models.AnalysisResult{}, nil
}

func (m *MockClient) Synthesize(ctx context.Context, clauses []models.ClauseResult, summaries []string) (models.Synthesis, error) {
	m.mu.Lock()
	m.calls.Synthesize++
	m.summaries = append([]string(nil), summaries...)
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, clauses, summaries)
	}
	return models.Synthesis{}, nil
}

// Calls returns a snapshot of the call counters.
func (m *MockClient) Calls() Calls {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Chunks returns the chunks passed to AnalyzeChunk, in call order.
func (m *MockClient) Chunks() []models.Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Chunk(nil), m.chunks...)
}

// Summaries returns the section summaries passed to the last Synthesize call.
func (m *MockClient) Summaries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.summaries...)
}

// NewMockClient returns a MockClient with sensible default responses.
func NewMockClient() *MockClient {
	return &MockClient{
		Name_: "mock",
		AnalyzeDocumentFunc: func(_ context.Context, _ string) (models.AnalysisResult, error) {
			return models.AnalysisResult{
				Summary:          "Mock analysis summary for testing",
				OverallRiskScore: 6,
				RiskSummary:      "One high-risk indemnification clause",
				Clauses: []models.ClauseResult{
					{
						Category:       models.CategoryIndemnification,
						ExactText:      "Customer shall indemnify Vendor against any and all claims.",
						RiskLevel:      models.RiskHigh,
						Explanation:    "Uncapped one-sided indemnity",
						Recommendation: "Make the indemnity mutual and capped",
					},
				},
			}, nil
		},
		AnalyzeChunkFunc: func(_ context.Context, chunk models.Chunk) (models.AnalysisResult, error) {
			return models.AnalysisResult{
				Summary:          fmt.Sprintf("Mock summary of part %d of %d", chunk.Index, chunk.Total),
				OverallRiskScore: 5,
				RiskSummary:      "Mock chunk risk summary",
				Clauses: []models.ClauseResult{
					{
						Category:    models.CategoryTermination,
						ExactText:   fmt.Sprintf("Termination clause found in part %d.", chunk.Index),
						RiskLevel:   models.RiskMedium,
						Explanation: "Short notice period",
					},
				},
			}, nil
		},
		SynthesizeFunc: func(_ context.Context, clauses []models.ClauseResult, summaries []string) (models.Synthesis, error) {
			return models.Synthesis{
				Summary:          fmt.Sprintf("Mock synthesis of %d sections", len(summaries)),
				OverallRiskScore: 5,
				RiskSummary:      fmt.Sprintf("%d clauses reviewed", len(clauses)),
			}, nil
		},
	}
}

// NewFailingClient returns a MockClient whose every call returns the given error.
func NewFailingClient(err error) *MockClient {
	return &MockClient{
		Name_: "mock-failing",
		AnalyzeDocumentFunc: func(_ context.Context, _ string) (models.AnalysisResult, error) {
			return models.AnalysisResult{}, err
		},
		AnalyzeChunkFunc: func(_ context.Context, _ models.Chunk) (models.AnalysisResult, error) {
			return models.AnalysisResult{}, err
		},
		SynthesizeFunc: func(_ context.Context, _ []models.ClauseResult, _ []string) (models.Synthesis, error) {
			return models.Synthesis{}, err
		},
	}
}

// NewTimeoutClient returns a MockClient that blocks until the context is cancelled.
func NewTimeoutClient() *MockClient {
	return &MockClient{
		Name_: "mock-timeout",
		AnalyzeDocumentFunc: func(ctx context.Context, _ string) (models.AnalysisResult, error) {
			<-ctx.Done()
			return models.AnalysisResult{}, llm.ErrInferenceTimeout
		},
		AnalyzeChunkFunc: func(ctx context.Context, _ models.Chunk) (models.AnalysisResult, error) {
			<-ctx.Done()
			return models.AnalysisResult{}, llm.ErrInferenceTimeout
		},
		SynthesizeFunc: func(ctx context.Context, _ []models.ClauseResult, _ []string) (models.Synthesis, error) {
			<-ctx.Done()
			return models.Synthesis{}, llm.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockClient implements AnalysisClient.
var _ models.AnalysisClient = (*MockClient)(nil)
