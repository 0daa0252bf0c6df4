package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/contractlens/internal/analysis"
)

// NewChunksCmd creates the chunks command.
func NewChunksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunks <file>",
		Short: "Show how a contract would be split for analysis",
		Long: `Extract the text of a PDF or DOCX contract and print the chunk plan:
byte span and estimated tokens for every chunk. No AI provider is called.`,
		Args: cobra.ExactArgs(1),
		RunE: runChunks,
	}
	return cmd
}

func runChunks(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tokens := analysis.EstimateTokenCount(doc.Text)
	spans := analysis.SplitSpans(doc.Text)

	fmt.Fprintf(out, "File:    %s\n", args[0])
	fmt.Fprintf(out, "Pages:   %d\n", doc.PageCount)
	fmt.Fprintf(out, "Bytes:   %d\n", len(doc.Text))
	fmt.Fprintf(out, "Tokens:  ~%d (budget %d per chunk)\n", tokens, analysis.MaxTokensPerChunk)
	fmt.Fprintf(out, "Chunks:  %d\n", len(spans))
	if doc.Warning != "" {
		fmt.Fprintf(out, "Warning: %s\n", doc.Warning)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTART\tEND\tTOKENS\tSTARTS WITH")
	for i, s := range spans {
		part := doc.Text[s.Start:s.End]
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\n",
			i+1, s.Start, s.End, analysis.EstimateTokenCount(part), preview(part, 40))
	}
	return tw.Flush()
}

// preview returns the first n runes of s on one line.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
