package mock_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kiranshivaraju/contractlens/internal/ai/llm"
	"github.com/kiranshivaraju/contractlens/internal/ai/mock"
	"github.com/kiranshivaraju/contractlens/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChunk() models.Chunk {
	return models.Chunk{Text: "The term of this Agreement is one year.", Index: 2, Total: 3}
}

// --- NewMockClient ---

func TestNewMockClient_Name(t *testing.T) {
	c := mock.NewMockClient()
	assert.Equal(t, "mock", c.Name())
}

func TestNewMockClient_AnalyzeDocument(t *testing.T) {
	c := mock.NewMockClient()
	result, err := c.AnalyzeDocument(context.Background(), "contract text")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Summary)
	assert.InDelta(t, 6, result.OverallRiskScore, 0.001)
	require.Len(t, result.Clauses, 1)
	assert.Equal(t, models.RiskHigh, result.Clauses[0].RiskLevel)
	assert.Equal(t, 1, c.Calls().Document)
}

func TestNewMockClient_AnalyzeChunk(t *testing.T) {
	c := mock.NewMockClient()
	result, err := c.AnalyzeChunk(context.Background(), sampleChunk())

	require.NoError(t, err)
	assert.Contains(t, result.Summary, "part 2 of 3")
	assert.Equal(t, []models.Chunk{sampleChunk()}, c.Chunks())
}

func TestNewMockClient_Synthesize(t *testing.T) {
	c := mock.NewMockClient()
	syn, err := c.Synthesize(context.Background(), nil, []string{"Section 1: a", "Section 2: b"})

	require.NoError(t, err)
	assert.Equal(t, "Mock synthesis of 2 sections", syn.Summary)
	assert.Equal(t, []string{"Section 1: a", "Section 2: b"}, c.Summaries())
}

// --- NewFailingClient ---

func TestNewFailingClient(t *testing.T) {
	c := mock.NewFailingClient(llm.ErrProviderUnavailable)
	assert.Equal(t, "mock-failing", c.Name())

	_, err := c.AnalyzeDocument(context.Background(), "x")
	assert.ErrorIs(t, err, llm.ErrProviderUnavailable)

	_, err = c.AnalyzeChunk(context.Background(), sampleChunk())
	assert.ErrorIs(t, err, llm.ErrProviderUnavailable)

	_, err = c.Synthesize(context.Background(), nil, nil)
	assert.ErrorIs(t, err, llm.ErrProviderUnavailable)

	assert.Equal(t, 3, c.Calls().Total())
}

func TestNewFailingClient_CustomError(t *testing.T) {
	customErr := errors.New("custom AI error")
	c := mock.NewFailingClient(customErr)

	_, err := c.AnalyzeDocument(context.Background(), "x")
	assert.ErrorIs(t, err, customErr)
}

// --- NewTimeoutClient ---

func TestNewTimeoutClient(t *testing.T) {
	c := mock.NewTimeoutClient()
	assert.Equal(t, "mock-timeout", c.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.AnalyzeChunk(ctx, sampleChunk())
	assert.ErrorIs(t, err, llm.ErrInferenceTimeout)
}

// --- Zero-value MockClient ---

func TestMockClient_NilFuncs(t *testing.T) {
	c := &mock.MockClient{Name_: "bare"}

	result, err := c.AnalyzeDocument(context.Background(), "x")
	assert.NoError(t, err)
	assert.Equal(t, models.AnalysisResult{}, result)

	syn, err := c.Synthesize(context.Background(), nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.Synthesis{}, syn)
}

func TestMockClient_ConcurrentCalls(t *testing.T) {
	c := mock.NewMockClient()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.AnalyzeChunk(context.Background(), sampleChunk())
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, c.Calls().Chunk)
}

// --- Interface compliance ---

func TestMockClient_ImplementsAnalysisClient(t *testing.T) {
	var _ models.AnalysisClient = mock.NewMockClient()
	var _ models.AnalysisClient = mock.NewFailingClient(nil)
	var _ models.AnalysisClient = mock.NewTimeoutClient()
}
