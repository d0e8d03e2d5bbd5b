package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"brevity/internal/config"
	"brevity/internal/core"
	"brevity/internal/logger"
	"brevity/internal/observability"
	"brevity/internal/persistence"
	"brevity/internal/pipeline"
	"brevity/internal/render"
)

// defaultCLIUser owns results saved from the command line without --user.
const defaultCLIUser = "cli"

type summarizeOptions struct {
	text   string
	file   string
	title  string
	format string
	output string
	save   bool
	user   string
}

// NewSummarizeCmd creates the summarize command
func NewSummarizeCmd() *cobra.Command {
	opts := summarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize [URL]",
		Short: "Analyze a link or pasted text",
		Long: `Analyze a single piece of content.

The source is picked from the URL: YouTube videos, Spotify and Apple Podcasts
episodes and any other web page (HTML or PDF). Without a URL the text from
--text or --file is analyzed directly.

Examples:
  brevity summarize https://www.youtube.com/watch?v=dQw4w9WgXcQ
  brevity summarize https://example.com/report.pdf --format markdown --output report.md
  brevity summarize --text "$(pbpaste)" --title "Meeting notes"
  brevity summarize https://example.com/article --save --user alice`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.text, "text", "", "Text to analyze instead of a URL")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the text to analyze from a file ('-' for stdin)")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Title for the content")
	cmd.Flags().StringVar(&opts.format, "format", render.FormatTerminal, "Output format: terminal, json, markdown, html")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store the result in the database")
	cmd.Flags().StringVar(&opts.user, "user", defaultCLIUser, "Owner of the stored result")

	return cmd
}

func runSummarize(ctx context.Context, out io.Writer, args []string, opts summarizeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.Get()

	ref, err := buildReference(args, opts, os.Stdin)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p, err := pipeline.NewBuilder(cfg).Build(ctx)
	if err != nil {
		return err
	}

	result, err := p.SummarizeContent(ctx, ref)
	if err != nil {
		return err
	}

	if opts.save {
		if err := saveResult(ctx, cfg, opts.user, result); err != nil {
			return err
		}
		log.Info("Summary saved", "id", result.ID, "user", opts.user)
	}

	rendered, err := renderResult(result, opts.format)
	if err != nil {
		return err
	}

	if opts.output != "" {
		path, err := render.WriteFile(rendered, opts.output)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved to %s\n", path)
		return nil
	}

	_, err = io.WriteString(out, rendered)
	return err
}

// buildReference turns the positional URL and text flags into a content
// reference. A URL wins over text when both are given.
func buildReference(args []string, opts summarizeOptions, stdin io.Reader) (core.ContentReference, error) {
	ref := core.ContentReference{Title: opts.title, RawContent: opts.text}
	if len(args) > 0 {
		ref.URL = args[0]
	}

	if opts.file != "" {
		if opts.text != "" {
			return ref, errors.New("use either --text or --file, not both")
		}
		text, err := readInput(opts.file, stdin)
		if err != nil {
			return ref, err
		}
		ref.RawContent = text
	}

	if !ref.HasURL() && !ref.HasRawContent() {
		return ref, errors.New("provide a URL argument or text via --text or --file")
	}
	return ref, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func renderResult(result *core.AnalysisResult, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", render.FormatTerminal:
		return render.Terminal(result, 0), nil
	case render.FormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode result: %w", err)
		}
		return string(data) + "\n", nil
	case render.FormatMarkdown:
		return render.Markdown(result), nil
	case render.FormatHTML:
		return render.HTML(result), nil
	default:
		return "", fmt.Errorf("unsupported format %q: use terminal, json, markdown or html", format)
	}
}

func saveResult(ctx context.Context, cfg *config.Config, user string, result *core.AnalysisResult) error {
	if strings.TrimSpace(user) == "" {
		user = defaultCLIUser
	}

	db, err := persistence.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Summaries().Create(ctx, user, result); err != nil {
		return err
	}

	recorder, err := observability.NewRecorder(cfg.PostHog)
	if err != nil {
		logger.Warn("Analytics disabled", "error", err)
		return nil
	}
	defer recorder.Close()
	recorder.SummaryCreated(user, result)
	return nil
}
