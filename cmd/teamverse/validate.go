package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/teamverse/internal/observability"
	"github.com/jonathan/teamverse/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <image>",
	Short: "Validate a rendered image",
	Long:  "Checks image dimensions and edge colors to detect rendering problems such as the white ribbon. Exits 1 when the image is invalid.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var (
	validateWidth     int
	validateHeight    int
	validateTolerance int
	validateNoEdges   bool
)

func init() {
	validateCmd.Flags().IntVar(&validateWidth, "width", 0, "Expected width (default from config)")
	validateCmd.Flags().IntVar(&validateHeight, "height", 0, "Expected height (default from config)")
	validateCmd.Flags().IntVar(&validateTolerance, "tolerance", -1, "Per-channel edge color tolerance (default from config)")
	validateCmd.Flags().BoolVar(&validateNoEdges, "no-edges", false, "Skip edge color checks")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	opts := validation.DefaultOptions()
	opts.Width = cfg.Render.Width
	opts.Height = cfg.Render.Height
	opts.Tolerance = cfg.Render.Tolerance
	if validateWidth > 0 {
		opts.Width = validateWidth
	}
	if validateHeight > 0 {
		opts.Height = validateHeight
	}
	if validateTolerance >= 0 {
		opts.Tolerance = validateTolerance
	}
	opts.CheckEdges = !validateNoEdges

	result := validation.ValidateImage(args[0], opts)
	observability.NewPrinter(cmd.OutOrStdout()).PrintValidationResult(result)

	if !result.Valid {
		return errSilentExit
	}
	return nil
}
