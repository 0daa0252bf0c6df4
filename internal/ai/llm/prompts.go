package llm

import (
	"fmt"
	"strings"

	"github.com/kiranshivaraju/contractlens/pkg/models"
)

const analystIntro = "You are an expert legal contract analyst AI."

const guidelines = `## Analysis Guidelines

### High-Risk Patterns to Flag
- **Unlimited or uncapped liability**: any clause that does not limit financial exposure
- **Broad indemnification**: requirements to defend or hold harmless for broad categories of claims
- **Auto-renewal with long notice periods**: automatic renewals requiring 60+ days notice to cancel
- **Unilateral termination rights**: one party can terminate easily while the other cannot
- **Unfavorable IP assignment**: broad transfer of intellectual property rights
- **Restrictive non-compete**: overly broad geographic or time restrictions
- **Unfavorable payment terms**: Net 60+ payment terms, unclear payment obligations
- **Broad confidentiality obligations**: overly long duration or scope
- **Mandatory arbitration**: especially in unfavorable jurisdictions
- **Automatic price increases**: uncapped or unclear pricing changes
- **Liquidated damages**: pre-set penalty amounts that may be excessive
- **Most Favored Nation clauses**: requirements to match competitor pricing or terms
- **Assignment restrictions**: limitations on transferring the contract
- **Warranty disclaimers**: AS-IS provisions or limited warranties

### Risk Level Definitions
- **LOW**: standard, balanced terms that are typical for this contract type
- **MEDIUM**: somewhat one-sided terms that warrant attention but are negotiable
- **HIGH**: significantly unfavorable terms that should be negotiated or carefully considered
- **CRITICAL**: extremely risky terms that could cause major financial or legal exposure

### Instructions
1. Read the entire contract carefully
2. Identify ALL significant clauses, not just risky ones
3. For each clause, extract the exact relevant text
4. Categorize each clause appropriately
5. Assess risk from the perspective of someone reviewing or signing this contract
6. Provide clear, actionable explanations and recommendations
7. Calculate an overall risk score based on the cumulative risk of all clauses`

// DocumentPrompt builds the prompt for analyzing a whole contract in one call.
func DocumentPrompt(text string) string {
	var b strings.Builder
	b.WriteString(analystIntro)
	b.WriteString(" Your task is to analyze the following contract and identify all significant clauses, with special attention to potentially risky or unfavorable terms.\n\n")
	b.WriteString(guidelines)
	b.WriteString("\n\n## Contract Text\n\n")
	b.WriteString(text)
	b.WriteString("\n\n---\n\nAnalyze this contract thoroughly. Be comprehensive in identifying clauses, but focus your explanations on the most important issues.")
	return b.String()
}

// ChunkPrompt builds the prompt for one section of a long contract.
func ChunkPrompt(chunk models.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s You are analyzing part %d of %d of a long contract.\n\n", analystIntro, chunk.Index, chunk.Total)
	b.WriteString("## Instructions\n")
	b.WriteString("- Extract and analyze all significant clauses in this section\n")
	b.WriteString("- Note that this is only a portion of the full contract\n")
	b.WriteString("- Focus on identifying clauses and their risk levels\n")
	b.WriteString("- Other sections may contain related terms\n\n")
	fmt.Fprintf(&b, "## Contract Section %d/%d\n\n", chunk.Index, chunk.Total)
	b.WriteString(chunk.Text)
	b.WriteString("\n\n---\n\nAnalyze this section and extract all significant clauses.")
	return b.String()
}

const explanationPreview = 100

// SynthesisPrompt builds the prompt that merges per-section findings into one verdict.
func SynthesisPrompt(clauses []models.ClauseResult, summaries []string) string {
	var b strings.Builder
	b.WriteString("Based on analyzing a long contract, here are the findings:\n\n")

	b.WriteString("## Section Summaries\n")
	b.WriteString(strings.Join(summaries, "\n\n"))

	fmt.Fprintf(&b, "\n\n## All Clauses Found (%d total)\n", len(clauses))
	for i, c := range clauses {
		fmt.Fprintf(&b, "%d. [%s] %s: %s...\n", i+1, c.Category, c.RiskLevel, preview(c.Explanation, explanationPreview))
	}

	counts := make(map[models.RiskLevel]int, len(models.RiskLevels))
	for _, c := range clauses {
		counts[c.RiskLevel]++
	}
	b.WriteString("\n## Risk Distribution\n")
	fmt.Fprintf(&b, "- Critical: %d\n", counts[models.RiskCritical])
	fmt.Fprintf(&b, "- High: %d\n", counts[models.RiskHigh])
	fmt.Fprintf(&b, "- Medium: %d\n", counts[models.RiskMedium])
	fmt.Fprintf(&b, "- Low: %d\n", counts[models.RiskLow])

	b.WriteString("\nProvide a final summary, overall risk score (1-10), and risk summary for this contract. ")
	b.WriteString("Consider cumulative risk: multiple medium-risk clauses together may indicate a high overall risk.")
	return b.String()
}

// preview returns the first n runes of s.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
