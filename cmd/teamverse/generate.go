package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/teamverse/internal/fetch"
	"github.com/jonathan/teamverse/internal/ingestion"
	"github.com/jonathan/teamverse/internal/observability"
	"github.com/jonathan/teamverse/internal/pipeline"
	"github.com/jonathan/teamverse/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <source>",
	Short: "Generate a content bundle from a source",
	Long: `Parses a web page, Google Docs link or feed, detects its audience, key points
and quotes, and writes a new content_bundle-<timestamp>-<id>.json file.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var (
	generateOutputDir string
	generateAudience  string
	generateFeed      bool
	generatePreview   bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateOutputDir, "output-dir", "o", "", "Output directory for the bundle (default from config)")
	generateCmd.Flags().StringVar(&generateAudience, "audience", "", "Target audience (uk, us, global); detected when empty")
	generateCmd.Flags().BoolVar(&generateFeed, "feed", false, "Treat the source as an RSS/Atom feed")
	generateCmd.Flags().BoolVar(&generatePreview, "preview", false, "Render the parsed markdown in the terminal")

	rootCmd.AddCommand(generateCmd)
}

// newSourceParser wires the source parsers from the loaded config.
func newSourceParser() *ingestion.Parser {
	web := ingestion.NewWebParser(&fetch.Options{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
	})
	creds := &ingestion.FileCredentialProvider{
		CredentialsFile: cfg.Google.CredentialsFile,
		TokenFile:       cfg.Google.TokenFile,
		Authorize:       ingestion.LoopbackAuthorizer(os.Stderr),
	}
	return ingestion.NewParser(web, creds)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts := pipeline.GenerateOptions{
		Source:    args[0],
		OutputDir: cfg.OutputDir,
	}
	if generateOutputDir != "" {
		opts.OutputDir = generateOutputDir
	}
	if generateAudience != "" {
		audience, err := types.ParseAudience(generateAudience)
		if err != nil {
			return err
		}
		opts.Audience = audience
	}
	if generateFeed {
		opts.Kind = types.SourceFeed
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	if verbose || cfg.Verbose {
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			if doc, ok := e.Content.(*types.SourceDocument); ok {
				printer.PrintSourceDocument(doc)
			}
		}
	}

	result, err := pipeline.NewGenerator(newSourceParser()).Generate(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if verbose || cfg.Verbose {
		printer.PrintAnalysis(result.Analysis)
	}
	if generatePreview {
		if err := printer.PrintMarkdown(result.Document.Markdown); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	absDir, err := filepath.Abs(filepath.Dir(result.Path))
	if err != nil {
		absDir = filepath.Dir(result.Path)
	}
	fmt.Fprintf(out, "Generated content bundle from: %s\n", result.File.Title)
	fmt.Fprintf(out, "Audience: %s\n", result.File.Audience)
	fmt.Fprintf(out, "Output directory: %s\n", absDir)
	fmt.Fprintf(out, "  - %s\n", filepath.Base(result.Path))
	return nil
}
