package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/teamverse/internal/rendering"
	"github.com/jonathan/teamverse/internal/schemas"
	"github.com/jonathan/teamverse/internal/types"
)

var renderBundleCmd = &cobra.Command{
	Use:   "render-bundle <bundle.json>",
	Short: "Render every social post of a content bundle",
	Long:  "Reads a content bundle file written by generate and renders one social-<audience>.png per social post, concurrently.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRenderBundle,
}

var (
	renderBundleOutputDir string
	renderBundleSchema    string
)

func init() {
	renderBundleCmd.Flags().StringVarP(&renderBundleOutputDir, "output-dir", "o", "", "Output directory for images (default from config)")
	renderBundleCmd.Flags().StringVar(&renderBundleSchema, "schema", "", "Validate against this schema file instead of the built-in content bundle schema")
	rootCmd.AddCommand(renderBundleCmd)
}

func runRenderBundle(cmd *cobra.Command, args []string) error {
	file, err := loadBundleFile(args[0], renderBundleSchema)
	if err != nil {
		return err
	}
	if file.Bundle == nil || len(file.Bundle.SocialPosts) == 0 {
		return fmt.Errorf("bundle %s has no social posts", args[0])
	}

	outDir := cfg.OutputDir
	if renderBundleOutputDir != "" {
		outDir = renderBundleOutputDir
	}

	renderer := rendering.NewSocialRenderer(cfg.Render.Browser, cfg.Render.Timeout)
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Render.Timeout)
	defer cancel()

	paths, err := renderer.RenderBundle(ctx, file.Bundle, outDir, cfg.Render.Width, cfg.Render.Height)
	if err != nil {
		return err
	}

	audiences := make([]string, 0, len(paths))
	for a := range paths {
		audiences = append(audiences, string(a))
	}
	sort.Strings(audiences)
	for _, a := range audiences {
		fmt.Fprintf(cmd.OutOrStdout(), "Generated: %s\n", paths[types.Audience(a)])
	}
	return nil
}

func loadBundleFile(path, schemaPath string) (*types.BundleFile, error) {
	validate := schemas.ValidateBundleFile
	if schemaPath != "" {
		validate = func(p string) error { return schemas.ValidateJSON(schemaPath, p) }
	}
	if err := validate(path); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle file: %w", err)
	}
	var file types.BundleFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundle JSON: %w", err)
	}
	return &file, nil
}
