package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/teamverse/internal/rendering"
	"github.com/jonathan/teamverse/internal/types"
)

var newsletterCmd = &cobra.Command{
	Use:   "newsletter",
	Short: "Render a newsletter HTML file",
	Long:  "Renders a newsletter email to HTML from a JSON variables file.",
	RunE:  runNewsletter,
}

var (
	newsletterVarsPath string
	newsletterOutput   string
)

// newsletterVars is the flat variables file accepted by the newsletter command.
type newsletterVars struct {
	Subject          string `json:"subject"`
	PreviewText      string `json:"preview_text"`
	Audience         string `json:"audience"`
	HeroLabel        string `json:"hero_label"`
	HeroTitle        string `json:"hero_title"`
	HeroSubtitle     string `json:"hero_subtitle"`
	QuoteText        string `json:"quote_text"`
	QuoteName        string `json:"quote_name"`
	QuoteTitle       string `json:"quote_title"`
	QuoteHeadshot    string `json:"quote_headshot"`
	BodyHTML         string `json:"body_html"`
	CTAPrimaryText   string `json:"cta_primary_text"`
	CTAPrimaryURL    string `json:"cta_primary_url"`
	CTASecondaryText string `json:"cta_secondary_text"`
	CTASecondaryURL  string `json:"cta_secondary_url"`
}

func init() {
	newsletterCmd.Flags().StringVarP(&newsletterVarsPath, "vars", "v", "", "JSON file with newsletter data (required)")
	newsletterCmd.Flags().StringVarP(&newsletterOutput, "output", "o", "", "Output HTML path (required)")

	if err := newsletterCmd.MarkFlagRequired("vars"); err != nil {
		panic(fmt.Sprintf("failed to mark vars flag as required: %v", err))
	}
	if err := newsletterCmd.MarkFlagRequired("output"); err != nil {
		panic(fmt.Sprintf("failed to mark output flag as required: %v", err))
	}

	rootCmd.AddCommand(newsletterCmd)
}

func runNewsletter(cmd *cobra.Command, _ []string) error {
	newsletter, err := loadNewsletter(newsletterVarsPath)
	if err != nil {
		return err
	}

	path, err := rendering.RenderNewsletter(*newsletter, newsletterOutput)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated: %s\n", path)
	return nil
}

func loadNewsletter(path string) (*types.Newsletter, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vars file: %w", err)
	}
	var vars newsletterVars
	if err := json.Unmarshal(content, &vars); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vars JSON: %w", err)
	}
	return vars.toNewsletter()
}

func (v newsletterVars) toNewsletter() (*types.Newsletter, error) {
	audienceName := v.Audience
	if audienceName == "" {
		audienceName = string(types.AudienceUK)
	}
	audience, err := types.ParseAudience(audienceName)
	if err != nil {
		return nil, err
	}

	n := &types.Newsletter{
		Subject:          v.Subject,
		PreviewText:      v.PreviewText,
		Audience:         audience,
		HeroLabel:        v.HeroLabel,
		HeroTitle:        v.HeroTitle,
		HeroSubtitle:     v.HeroSubtitle,
		Quote:            types.NewQuoteBlock(v.QuoteText, v.QuoteName, v.QuoteTitle, v.QuoteHeadshot),
		BodyHTML:         v.BodyHTML,
		CTAPrimaryText:   v.CTAPrimaryText,
		CTAPrimaryURL:    v.CTAPrimaryURL,
		CTASecondaryText: v.CTASecondaryText,
		CTASecondaryURL:  v.CTASecondaryURL,
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("invalid newsletter: %s", types.FieldErrors(err)[0])
	}
	return n, nil
}
