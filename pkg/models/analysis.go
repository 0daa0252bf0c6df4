package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClauseCategory classifies an extracted clause.
type ClauseCategory string

const (
	CategoryPaymentTerms         ClauseCategory = "PAYMENT_TERMS"
	CategoryLiability            ClauseCategory = "LIABILITY"
	CategoryIndemnification      ClauseCategory = "INDEMNIFICATION"
	CategoryTermination          ClauseCategory = "TERMINATION"
	CategoryIntellectualProperty ClauseCategory = "INTELLECTUAL_PROPERTY"
	CategoryConfidentiality      ClauseCategory = "CONFIDENTIALITY"
	CategoryNonCompete           ClauseCategory = "NON_COMPETE"
	CategoryAutoRenewal          ClauseCategory = "AUTO_RENEWAL"
	CategoryDisputeResolution    ClauseCategory = "DISPUTE_RESOLUTION"
	CategoryDataPrivacy          ClauseCategory = "DATA_PRIVACY"
	CategoryForceMajeure         ClauseCategory = "FORCE_MAJEURE"
	CategoryOther                ClauseCategory = "OTHER"
)

// ClauseCategories lists every category in schema order.
var ClauseCategories = []ClauseCategory{
	CategoryPaymentTerms,
	CategoryLiability,
	CategoryIndemnification,
	CategoryTermination,
	CategoryIntellectualProperty,
	CategoryConfidentiality,
	CategoryNonCompete,
	CategoryAutoRenewal,
	CategoryDisputeResolution,
	CategoryDataPrivacy,
	CategoryForceMajeure,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c ClauseCategory) Valid() bool {
	for _, known := range ClauseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// RiskLevel is the ordinal severity of a clause: LOW < MEDIUM < HIGH < CRITICAL.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskLevels lists every risk level from lowest to highest.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Rank maps a risk level to 1..4. Unrecognized values rank 0.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

// NormalizeRiskLevel upper-cases and trims a model-supplied risk level.
func NormalizeRiskLevel(s string) RiskLevel {
	return RiskLevel(strings.ToUpper(strings.TrimSpace(s)))
}

// NormalizeCategory upper-cases and trims a model-supplied category.
// Unknown categories become OTHER.
func NormalizeCategory(s string) ClauseCategory {
	c := ClauseCategory(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return CategoryOther
	}
	return c
}

// ClauseResult is one clause as extracted by the model.
type ClauseResult struct {
	Category       ClauseCategory `json:"category"`
	ExactText      string         `json:"exact_text"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	Explanation    string         `json:"explanation"`
	Recommendation string         `json:"recommendation"`
}

// AnalysisResult is the outcome of one analysis run, or of one chunk within a run.
type AnalysisResult struct {
	Summary          string         `json:"summary"`
	OverallRiskScore float64        `json:"overall_risk_score"`
	RiskSummary      string         `json:"risk_summary"`
	Clauses          []ClauseResult `json:"clauses"`
}

// Synthesis is the document-level verdict produced from chunk findings.
type Synthesis struct {
	Summary          string  `json:"summary"`
	OverallRiskScore float64 `json:"overall_risk_score"`
	RiskSummary      string  `json:"risk_summary"`
}

// Analysis is the persisted analysis of a contract. A contract has at most one;
// re-analysis replaces it.
type Analysis struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	ContractID  uuid.UUID `db:"contract_id"  json:"contract_id"`
	Provider    string    `db:"provider"     json:"provider"`
	RiskScore   float64   `db:"risk_score"   json:"risk_score"`
	Summary     string    `db:"summary"      json:"summary"`
	RiskSummary string    `db:"risk_summary" json:"risk_summary"`
	Clauses     []Clause  `db:"-"            json:"clauses"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}

// Clause is a persisted clause, ordered within its analysis by Position.
type Clause struct {
	ID             uuid.UUID      `db:"id"             json:"id"`
	AnalysisID     uuid.UUID      `db:"analysis_id"    json:"analysis_id"`
	Category       ClauseCategory `db:"category"       json:"category"`
	Text           string         `db:"text"           json:"text"`
	RiskLevel      RiskLevel      `db:"risk_level"     json:"risk_level"`
	Explanation    string         `db:"explanation"    json:"explanation"`
	Recommendation string         `db:"recommendation" json:"recommendation"`
	Position       int            `db:"position"       json:"position"`
}

// NewAnalysis converts a pipeline result into a persistable Analysis with fresh IDs.
func NewAnalysis(contractID uuid.UUID, provider string, result AnalysisResult) *Analysis {
	a := &Analysis{
		ID:          uuid.New(),
		ContractID:  contractID,
		Provider:    provider,
		RiskScore:   result.OverallRiskScore,
		Summary:     result.Summary,
		RiskSummary: result.RiskSummary,
		Clauses:     make([]Clause, 0, len(result.Clauses)),
		CreatedAt:   time.Now().UTC(),
	}
	for i, c := range result.Clauses {
		a.Clauses = append(a.Clauses, Clause{
			ID:             uuid.New(),
			AnalysisID:     a.ID,
			Category:       c.Category,
			Text:           c.ExactText,
			RiskLevel:      c.RiskLevel,
			Explanation:    c.Explanation,
			Recommendation: c.Recommendation,
			Position:       i,
		})
	}
	return a
}
