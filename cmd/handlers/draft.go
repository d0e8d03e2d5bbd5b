package handlers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"brevity/internal/drafts"
)

// NewDraftCmd creates the draft command and its email and social subcommands
func NewDraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate an email or social draft from an analysis",
		Long: `Generate a draft from an existing thematic analysis without calling the model.

Examples:
  brevity draft email --analysis-file analysis.txt --title "Budget Cuts"
  cat analysis.txt | brevity draft social --analysis-file -`,
	}

	cmd.AddCommand(newDraftSubCmd("email", "Generate an email draft", drafts.GenerateEmailDraft))
	cmd.AddCommand(newDraftSubCmd("social", "Generate a social post with hashtags", drafts.GenerateSocialShare))
	return cmd
}

func newDraftSubCmd(use, short string, generate func(analysis, title string) string) *cobra.Command {
	var analysisFile, title string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDraft(cmd.OutOrStdout(), os.Stdin, analysisFile, title, generate)
		},
	}

	cmd.Flags().StringVarP(&analysisFile, "analysis-file", "a", "", "File holding the analysis text ('-' for stdin)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Title of the analyzed content")
	_ = cmd.MarkFlagRequired("analysis-file")
	return cmd
}

func runDraft(out io.Writer, stdin io.Reader, analysisFile, title string, generate func(string, string) string) error {
	analysis, err := readInput(analysisFile, stdin)
	if err != nil {
		return err
	}
	if strings.TrimSpace(analysis) == "" {
		return errors.New("analysis is empty")
	}
	_, err = fmt.Fprintln(out, generate(analysis, title))
	return err
}
