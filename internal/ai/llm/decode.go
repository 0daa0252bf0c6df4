package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kiranshivaraju/contractlens/pkg/models"
)

type toolInput struct {
	Summary          *string         `json:"summary"`
	OverallRiskScore *float64        `json:"overall_risk_score"`
	RiskSummary      *string         `json:"risk_summary"`
	Clauses          json.RawMessage `json:"clauses"`
}

type toolClause struct {
	Category       *string `json:"category"`
	ExactText      *string `json:"exact_text"`
	RiskLevel      *string `json:"risk_level"`
	Explanation    string  `json:"explanation"`
	Recommendation string  `json:"recommendation"`
}

// DecodeAnalysis parses tool-call arguments into an AnalysisResult.
// Any missing required field yields ErrMalformedResponse. Enum values are
// normalized; unrecognized categories become OTHER, unrecognized risk levels
// are kept as given.
func DecodeAnalysis(raw []byte) (models.AnalysisResult, error) {
	in, err := decodeHead(raw)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	if isAbsent(in.Clauses) {
		return models.AnalysisResult{}, fmt.Errorf("%w: missing clauses", ErrMalformedResponse)
	}

	clauses, err := decodeClauses(in.Clauses)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	return models.AnalysisResult{
		Summary:          *in.Summary,
		OverallRiskScore: *in.OverallRiskScore,
		RiskSummary:      *in.RiskSummary,
		Clauses:          clauses,
	}, nil
}

// DecodeSynthesis parses tool-call arguments of a synthesis call.
// Clauses are optional here but must be an array when present.
func DecodeSynthesis(raw []byte) (models.Synthesis, error) {
	in, err := decodeHead(raw)
	if err != nil {
		return models.Synthesis{}, err
	}
	if !isAbsent(in.Clauses) {
		if _, err := decodeClauses(in.Clauses); err != nil {
			return models.Synthesis{}, err
		}
	}

	return models.Synthesis{
		Summary:          *in.Summary,
		OverallRiskScore: *in.OverallRiskScore,
		RiskSummary:      *in.RiskSummary,
	}, nil
}

func decodeHead(raw []byte) (toolInput, error) {
	var in toolInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return toolInput{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	switch {
	case in.Summary == nil || *in.Summary == "":
		return toolInput{}, fmt.Errorf("%w: missing summary", ErrMalformedResponse)
	case in.OverallRiskScore == nil:
		return toolInput{}, fmt.Errorf("%w: missing overall_risk_score", ErrMalformedResponse)
	case in.RiskSummary == nil:
		return toolInput{}, fmt.Errorf("%w: missing risk_summary", ErrMalformedResponse)
	}
	return in, nil
}

func decodeClauses(raw json.RawMessage) ([]models.ClauseResult, error) {
	var items []toolClause
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: clauses is not an array of objects", ErrMalformedResponse)
	}

	clauses := make([]models.ClauseResult, 0, len(items))
	for i, it := range items {
		switch {
		case it.Category == nil:
			return nil, fmt.Errorf("%w: clause %d missing category", ErrMalformedResponse, i)
		case it.ExactText == nil:
			return nil, fmt.Errorf("%w: clause %d missing exact_text", ErrMalformedResponse, i)
		case it.RiskLevel == nil:
			return nil, fmt.Errorf("%w: clause %d missing risk_level", ErrMalformedResponse, i)
		}
		clauses = append(clauses, models.ClauseResult{
			Category:       models.NormalizeCategory(*it.Category),
			ExactText:      *it.ExactText,
			RiskLevel:      models.NormalizeRiskLevel(*it.RiskLevel),
			Explanation:    it.Explanation,
			Recommendation: it.Recommendation,
		})
	}
	return clauses, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
