package llm

import (
	"encoding/json"

	"github.com/kiranshivaraju/contractlens/pkg/models"
)

const (
	// ToolName is the single function every analysis call is forced to invoke.
	ToolName        = "analyze_contract_clauses"
	ToolDescription = "Analyze a contract and extract categorized clauses with risk assessments"

	// MaxAnalysisTokens bounds the response of document and chunk calls.
	MaxAnalysisTokens = 8192
	// MaxSynthesisTokens bounds the response of the synthesis call.
	MaxSynthesisTokens = 2048
)

// AnalysisSchema returns the JSON schema of the tool's input.
func AnalysisSchema() map[string]any {
	categories := make([]string, len(models.ClauseCategories))
	for i, c := range models.ClauseCategories {
		categories[i] = string(c)
	}
	levels := make([]string, len(models.RiskLevels))
	for i, l := range models.RiskLevels {
		levels[i] = string(l)
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-3 sentence summary of the contract type, parties involved, and main purpose",
			},
			"overall_risk_score": map[string]any{
				"type":        "number",
				"minimum":     1,
				"maximum":     10,
				"description": "Overall risk score from 1 (very safe/favorable) to 10 (very risky/unfavorable)",
			},
			"risk_summary": map[string]any{
				"type":        "string",
				"description": "1-2 sentence explanation of the overall risk level and main concerns",
			},
			"clauses": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"category": map[string]any{
							"type":        "string",
							"enum":        categories,
							"description": "The category of the clause",
						},
						"exact_text": map[string]any{
							"type":        "string",
							"description": "The exact text from the contract for this clause (or a representative excerpt if very long)",
						},
						"risk_level": map[string]any{
							"type":        "string",
							"enum":        levels,
							"description": "The risk level of this clause",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Plain English explanation of what this clause means and why it matters",
						},
						"recommendation": map[string]any{
							"type":        "string",
							"description": "Suggested action or negotiation point for this clause",
						},
					},
					"required": []string{"category", "exact_text", "risk_level", "explanation", "recommendation"},
				},
			},
		},
		"required": []string{"summary", "overall_risk_score", "risk_summary", "clauses"},
	}
}

// AnalysisSchemaJSON is AnalysisSchema encoded as JSON.
func AnalysisSchemaJSON() json.RawMessage {
	b, err := json.Marshal(AnalysisSchema())
	if err != nil {
		// The schema is built from static values only.
		panic(err)
	}
	return b
}
