// Package analysis implements the long-document analysis pipeline: token
// estimation, boundary-aware chunking, clause deduplication and orchestration
// of per-chunk LLM calls into a single verdict.
package analysis

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTokensPerChunk leaves room for the prompt and the structured response
	// inside the model's context window.
	MaxTokensPerChunk = 80000
	// OverlapChars of context are re-included at the start of each following chunk.
	OverlapChars = 2000

	charsPerToken = 4
	minTailChars  = 100
)

// Span is a half-open byte range [Start, End) of the source text.
type Span struct {
	Start int
	End   int
}

// EstimateTokenCount approximates tokens as ceil(len(text)/4).
func EstimateTokenCount(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// SplitIntoChunks divides text into overlapping chunks that each fit
// MaxTokensPerChunk. Text within budget is returned unchanged as the only chunk.
// Chunks are trimmed of surrounding whitespace and never empty.
func SplitIntoChunks(text string) []string {
	if EstimateTokenCount(text) <= MaxTokensPerChunk {
		return []string{text}
	}

	spans := SplitSpans(text)
	chunks := make([]string, 0, len(spans))
	for _, s := range spans {
		if c := strings.TrimSpace(text[s.Start:s.End]); c != "" {
			chunks = append(chunks, c)
		}
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// SplitSpans returns the untrimmed spans SplitIntoChunks cuts text into.
// Consecutive spans overlap by OverlapChars bytes, slightly fewer when the
// overlap would otherwise begin inside a multi-byte rune.
func SplitSpans(text string) []Span {
	n := len(text)
	estimated := EstimateTokenCount(text)
	if estimated <= MaxTokensPerChunk {
		return []Span{{Start: 0, End: n}}
	}

	maxChars := chunkBudget(n, estimated)

	var spans []Span
	start := 0
	for start < n {
		end := start + maxChars
		if end >= n {
			end = n
		} else {
			end = cutPoint(text, start, end, maxChars)
		}
		spans = append(spans, Span{Start: start, End: end})

		if end == n {
			break
		}

		next := end - OverlapChars
		if next < 0 {
			next = 0
		}
		for next < end && !utf8.RuneStart(text[next]) {
			next++
		}
		if next <= start {
			next = end
		}
		start = next
		if start >= n-minTailChars {
			break
		}
	}
	return spans
}

// chunkBudget is the per-chunk byte budget derived from the effective
// bytes-per-token ratio of the whole text.
func chunkBudget(n, estimatedTokens int) int {
	ratio := float64(n) / float64(estimatedTokens)
	return int(math.Floor(MaxTokensPerChunk * ratio))
}

// cutPoint picks where a chunk ending near end should be cut. A paragraph break
// wins over a sentence break; either must start in the second half of the
// budget and no later than end, and the cut never passes end. Without one, the
// raw offset is used, moved back to a rune boundary.
func cutPoint(text string, start, end, maxChars int) int {
	floor := start + (maxChars+1)/2

	if i := strings.LastIndex(text[floor:min(end+2, len(text))], "\n\n"); i >= 0 {
		return floor + i
	}
	if i := strings.LastIndex(text[floor:min(end+1, len(text))], ". "); i >= 0 {
		return floor + i + 1
	}

	for end > floor && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}
