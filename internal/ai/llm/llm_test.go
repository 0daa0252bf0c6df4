package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kiranshivaraju/contractlens/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- DecodeAnalysis ---

func TestDecodeAnalysis_Valid(t *testing.T) {
	raw := `{
		"summary": "A SaaS subscription agreement.",
		"overall_risk_score": 7.5,
		"risk_summary": "Uncapped liability.",
		"clauses": [
			{"category": "liability", "exact_text": "Liability is unlimited.", "risk_level": " critical ",
			 "explanation": "No cap", "recommendation": "Cap at fees paid"},
			{"category": "SOMETHING_NEW", "exact_text": "Misc.", "risk_level": "SEVERE",
			 "explanation": "", "recommendation": ""}
		]
	}`

	result, err := DecodeAnalysis([]byte(raw))

	require.NoError(t, err)
	assert.Equal(t, "A SaaS subscription agreement.", result.Summary)
	assert.InDelta(t, 7.5, result.OverallRiskScore, 0.001)
	require.Len(t, result.Clauses, 2)
	assert.Equal(t, models.CategoryLiability, result.Clauses[0].Category)
	assert.Equal(t, models.RiskCritical, result.Clauses[0].RiskLevel)
	assert.Equal(t, models.CategoryOther, result.Clauses[1].Category)
	assert.Equal(t, models.RiskLevel("SEVERE"), result.Clauses[1].RiskLevel)
}

func TestDecodeAnalysis_EmptyClauses(t *testing.T) {
	result, err := DecodeAnalysis([]byte(`{"summary":"s","overall_risk_score":1,"risk_summary":"r","clauses":[]}`))

	require.NoError(t, err)
	assert.NotNil(t, result.Clauses)
	assert.Empty(t, result.Clauses)
}

func TestDecodeAnalysis_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `not json`},
		{"missing summary", `{"overall_risk_score":5,"risk_summary":"r","clauses":[]}`},
		{"empty summary", `{"summary":"","overall_risk_score":5,"risk_summary":"r","clauses":[]}`},
		{"missing score", `{"summary":"s","risk_summary":"r","clauses":[]}`},
		{"score as string", `{"summary":"s","overall_risk_score":"5","risk_summary":"r","clauses":[]}`},
		{"missing risk summary", `{"summary":"s","overall_risk_score":5,"clauses":[]}`},
		{"missing clauses", `{"summary":"s","overall_risk_score":5,"risk_summary":"r"}`},
		{"null clauses", `{"summary":"s","overall_risk_score":5,"risk_summary":"r","clauses":null}`},
		{"clauses not array", `{"summary":"s","overall_risk_score":5,"risk_summary":"r","clauses":"none"}`},
		{"clause not object", `{"summary":"s","overall_risk_score":5,"risk_summary":"r","clauses":[1]}`},
		{"clause missing text", `{"summary":"s","overall_risk_score":5,"risk_summary":"r","clauses":[{"category":"OTHER","risk_level":"LOW"}]}`},
		{"clause missing risk", `{"summary":"s","overall_risk_score":5,"risk_summary":"r","clauses":[{"category":"OTHER","exact_text":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAnalysis([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

// --- DecodeSynthesis ---

func TestDecodeSynthesis(t *testing.T) {
	syn, err := DecodeSynthesis([]byte(`{"summary":"final","overall_risk_score":6,"risk_summary":"several medium risks"}`))

	require.NoError(t, err)
	assert.Equal(t, models.Synthesis{Summary: "final", OverallRiskScore: 6, RiskSummary: "several medium risks"}, syn)
}

func TestDecodeSynthesis_IgnoresEchoedClauses(t *testing.T) {
	_, err := DecodeSynthesis([]byte(`{"summary":"f","overall_risk_score":6,"risk_summary":"r","clauses":[]}`))
	assert.NoError(t, err)

	_, err = DecodeSynthesis([]byte(`{"summary":"f","overall_risk_score":6,"risk_summary":"r","clauses":{}}`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeSynthesis_MissingScore(t *testing.T) {
	_, err := DecodeSynthesis([]byte(`{"summary":"f","risk_summary":"r"}`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

// --- Schema ---

func TestAnalysisSchemaJSON(t *testing.T) {
	var schema map[string]any
	require.NoError(t, json.Unmarshal(AnalysisSchemaJSON(), &schema))

	assert.Equal(t, "object", schema["type"])
	assert.ElementsMatch(t, []any{"summary", "overall_risk_score", "risk_summary", "clauses"}, schema["required"])

	props := schema["properties"].(map[string]any)
	clauses := props["clauses"].(map[string]any)
	items := clauses["items"].(map[string]any)
	itemProps := items["properties"].(map[string]any)
	category := itemProps["category"].(map[string]any)
	assert.Len(t, category["enum"], 12)
	risk := itemProps["risk_level"].(map[string]any)
	assert.Equal(t, []any{"LOW", "MEDIUM", "HIGH", "CRITICAL"}, risk["enum"])
}

// --- Prompts ---

func TestDocumentPrompt(t *testing.T) {
	p := DocumentPrompt("THE CONTRACT BODY")

	assert.Contains(t, p, "## Contract Text\n\nTHE CONTRACT BODY")
	assert.Contains(t, p, "Risk Level Definitions")
}

func TestChunkPrompt(t *testing.T) {
	p := ChunkPrompt(models.Chunk{Text: "SECTION BODY", Index: 2, Total: 5})

	assert.Contains(t, p, "part 2 of 5")
	assert.Contains(t, p, "only a portion of the full contract")
	assert.Contains(t, p, "## Contract Section 2/5\n\nSECTION BODY")
}

func TestSynthesisPrompt(t *testing.T) {
	long := strings.Repeat("e", 150)
	clauses := []models.ClauseResult{
		{Category: models.CategoryLiability, RiskLevel: models.RiskCritical, Explanation: long},
		{Category: models.CategoryTermination, RiskLevel: models.RiskHigh, Explanation: "short"},
		{Category: models.CategoryOther, RiskLevel: models.RiskHigh, Explanation: "x"},
	}

	p := SynthesisPrompt(clauses, []string{"Section 1: alpha", "Section 2: beta"})

	assert.Contains(t, p, "Section 1: alpha\n\nSection 2: beta")
	assert.Contains(t, p, "(3 total)")
	assert.Contains(t, p, "1. [LIABILITY] CRITICAL: "+strings.Repeat("e", 100)+"...\n")
	assert.NotContains(t, p, strings.Repeat("e", 101))
	assert.Contains(t, p, "2. [TERMINATION] HIGH: short...")
	assert.Contains(t, p, "- Critical: 1\n- High: 2\n- Medium: 0\n- Low: 0")
}
