package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"brevity/internal/config"
	"brevity/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "brevity",
		Short: "Thematic analysis, email drafts and social posts for any link or text.",
		Long: `Brevity reads a web article, YouTube video, podcast episode or pasted text,
asks a language model for a thematic analysis and produces an email draft and
a social post from it.

Examples:
  # Analyze an article and print it in the terminal
  brevity summarize https://example.com/article

  # Analyze pasted text and save the result for a user
  brevity summarize --file notes.txt --title "Team Notes" --save --user alice

  # Build an email draft from an existing analysis
  brevity draft email --analysis-file analysis.txt --title "Budget Cuts"

  # Run the HTTP API
  brevity serve`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.brevity.yaml)")

	rootCmd.AddCommand(NewSummarizeCmd())
	rootCmd.AddCommand(NewDraftCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewMigrateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads configuration and applies the logging section.
func initConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}
	return nil
}
