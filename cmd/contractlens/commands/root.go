// Package commands implements the contractlens CLI.
package commands

import (
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contractlens",
		Short: "Analyze contracts for risky clauses",
		Long: `contractlens extracts text from PDF and DOCX contracts and runs the
clause analysis pipeline against the configured AI provider.

Provider settings come from the environment (AI_PROVIDER, ANTHROPIC_API_KEY,
OPENAI_API_KEY, OLLAMA_BASE_URL, ...). A .env file in the working directory
is loaded when present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewChunksCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// newLogger writes progress to w when --verbose is set and only warnings otherwise.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
