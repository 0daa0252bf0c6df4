package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/contractlens/internal/ai"
	"github.com/kiranshivaraju/contractlens/internal/analysis"
	"github.com/kiranshivaraju/contractlens/internal/config"
	"github.com/kiranshivaraju/contractlens/internal/extract"
	"github.com/kiranshivaraju/contractlens/pkg/models"
)

var (
	analyzeConcurrency int
	analyzeProvider    string
)

// newClient is swapped out in tests.
var newClient = ai.NewClient

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a contract and print the result as JSON",
		Long: `Extract the text of a PDF or DOCX contract and run the full analysis
pipeline against the configured AI provider. Long contracts are split into
overlapping chunks, analyzed per chunk and synthesized into one verdict.

Examples:
  contractlens analyze msa.pdf
  contractlens analyze --provider openai --concurrency 4 supply-agreement.docx`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 1, "Chunk analyses to run at once")
	cmd.Flags().StringVar(&analyzeProvider, "provider", "", "Override AI_PROVIDER")

	return cmd
}

type analyzeOutput struct {
	File      string                   `json:"file"`
	Provider  string                   `json:"provider"`
	PageCount int                      `json:"page_count"`
	Warning   string                   `json:"warning,omitempty"`
	Chunks    int                      `json:"chunks"`
	Risk      map[models.RiskLevel]int `json:"risk_distribution"`
	Result    models.AnalysisResult    `json:"result"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeConcurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", analyzeConcurrency)
	}

	cfg, err := config.LoadAI()
	if err != nil {
		return fmt.Errorf("loading AI config: %w", err)
	}
	if analyzeProvider != "" {
		cfg.Provider = analyzeProvider
	}

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	if err := extract.CheckSufficient(doc); err != nil {
		return err
	}

	client, err := newClient(*cfg)
	if err != nil {
		return err
	}

	orch := analysis.NewOrchestrator(client,
		analysis.WithConcurrency(analyzeConcurrency),
		analysis.WithLogger(newLogger(cmd.ErrOrStderr())))

	result, err := orch.Analyze(cmd.Context(), doc.Text)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", args[0], err)
	}

	out := analyzeOutput{
		File:      args[0],
		Provider:  client.Name(),
		PageCount: doc.PageCount,
		Warning:   doc.Warning,
		Chunks:    len(analysis.SplitIntoChunks(doc.Text)),
		Risk:      analysis.RiskDistribution(result.Clauses),
		Result:    result,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
