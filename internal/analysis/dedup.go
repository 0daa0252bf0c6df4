package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/kiranshivaraju/contractlens/pkg/models"
)

const fingerprintChars = 100

// Fingerprint is the key under which two clause excerpts count as the same
// clause: the first 100 characters, lowercased and trimmed.
func Fingerprint(excerpt string) string {
	return strings.TrimSpace(strings.ToLower(truncateRunes(excerpt, fingerprintChars)))
}

// DeduplicateClauses merges clauses that share a fingerprint, keeping the one
// with the strictly highest risk level (first seen wins ties). Output follows
// first-seen key order. Returns empty slice for empty input (never nil).
func DeduplicateClauses(clauses []models.ClauseResult) []models.ClauseResult {
	index := make(map[string]int, len(clauses))
	out := make([]models.ClauseResult, 0, len(clauses))

	for _, c := range clauses {
		key := Fingerprint(c.ExactText)
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, c)
			continue
		}
		if c.RiskLevel.Rank() > out[i].RiskLevel.Rank() {
			out[i] = c
		}
	}

	return out
}

// RiskDistribution counts clauses per recognized risk level.
func RiskDistribution(clauses []models.ClauseResult) map[models.RiskLevel]int {
	dist := make(map[models.RiskLevel]int, len(models.RiskLevels))
	for _, level := range models.RiskLevels {
		dist[level] = 0
	}
	for _, c := range clauses {
		if c.RiskLevel.Rank() > 0 {
			dist[c.RiskLevel]++
		}
	}
	return dist
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
