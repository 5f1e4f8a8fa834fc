package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonathan/teamverse/internal/rendering"
	"github.com/jonathan/teamverse/internal/types"
)

var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Render a social media image",
	Long:  "Renders a social media PNG from a JSON variables file and/or flags. Flags that are set override values from the file.",
	RunE:  runSocial,
}

var (
	socialVarsPath string
	socialFlags    socialVars
	socialWidth    int
	socialHeight   int
	socialOutput   string
)

// socialVars is the flat variables file accepted by the social command.
type socialVars struct {
	HeadlinePrefix    string `json:"headline_prefix"`
	HeadlineHighlight string `json:"headline_highlight"`
	Subtext           string `json:"subtext"`
	Audience          string `json:"audience"`
	Badge             string `json:"badge"`
	Quote             string `json:"quote"`
	QuoteName         string `json:"quote_name"`
	QuoteTitle        string `json:"quote_title"`
	HeadshotURL       string `json:"headshot_url"`
	LogoURL           string `json:"logo_url"`
}

func init() {
	f := socialCmd.Flags()
	f.StringVarP(&socialVarsPath, "vars", "v", "", "JSON file with template variables")
	f.StringVar(&socialFlags.HeadlinePrefix, "headline-prefix", "", "First line of headline")
	f.StringVar(&socialFlags.HeadlineHighlight, "headline-highlight", "", "Highlighted second line")
	f.StringVar(&socialFlags.Subtext, "subtext", "", "Supporting description")
	f.StringVar(&socialFlags.Audience, "audience", "uk", "Target audience (uk, us, global)")
	f.StringVar(&socialFlags.Badge, "badge", types.DefaultBadge, "Badge text")
	f.StringVar(&socialFlags.Quote, "quote", "", "Pull quote text")
	f.StringVar(&socialFlags.QuoteName, "quote-name", "", "Quote attribution name")
	f.StringVar(&socialFlags.QuoteTitle, "quote-title", "", "Quote attribution title")
	f.StringVar(&socialFlags.HeadshotURL, "headshot-url", "", "URL to headshot image")
	f.IntVar(&socialWidth, "width", 0, "Image width in pixels (default from config)")
	f.IntVar(&socialHeight, "height", 0, "Image height in pixels (default from config)")
	f.StringVarP(&socialOutput, "output", "o", "", "Output PNG path (required)")

	if err := socialCmd.MarkFlagRequired("output"); err != nil {
		panic(fmt.Sprintf("failed to mark output flag as required: %v", err))
	}

	rootCmd.AddCommand(socialCmd)
}

func runSocial(cmd *cobra.Command, _ []string) error {
	vars := socialVars{}
	if socialVarsPath != "" {
		loaded, err := loadSocialVars(socialVarsPath)
		if err != nil {
			return err
		}
		vars = *loaded
	}
	vars = mergeSocialVars(vars, socialFlags, cmd.Flags())

	post, err := vars.toSocialPost()
	if err != nil {
		return err
	}

	width, height := socialWidth, socialHeight
	if width <= 0 {
		width = cfg.Render.Width
	}
	if height <= 0 {
		height = cfg.Render.Height
	}

	renderer := rendering.NewSocialRenderer(cfg.Render.Browser, cfg.Render.Timeout)
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Render.Timeout)
	defer cancel()

	path, err := renderer.Render(ctx, post, socialOutput, width, height)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated: %s\n", path)
	return nil
}

func loadSocialVars(path string) (*socialVars, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vars file: %w", err)
	}
	var vars socialVars
	if err := json.Unmarshal(content, &vars); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vars JSON: %w", err)
	}
	return &vars, nil
}

// mergeSocialVars overlays every flag the user explicitly set onto vars.
// Flag defaults only apply when vars leaves the field empty.
func mergeSocialVars(vars, flagVals socialVars, flags *pflag.FlagSet) socialVars {
	overlay := []struct {
		flag string
		dst  *string
		src  string
	}{
		{"headline-prefix", &vars.HeadlinePrefix, flagVals.HeadlinePrefix},
		{"headline-highlight", &vars.HeadlineHighlight, flagVals.HeadlineHighlight},
		{"subtext", &vars.Subtext, flagVals.Subtext},
		{"audience", &vars.Audience, flagVals.Audience},
		{"badge", &vars.Badge, flagVals.Badge},
		{"quote", &vars.Quote, flagVals.Quote},
		{"quote-name", &vars.QuoteName, flagVals.QuoteName},
		{"quote-title", &vars.QuoteTitle, flagVals.QuoteTitle},
		{"headshot-url", &vars.HeadshotURL, flagVals.HeadshotURL},
	}
	for _, o := range overlay {
		if flags.Changed(o.flag) || *o.dst == "" {
			*o.dst = o.src
		}
	}
	return vars
}

func (v socialVars) toSocialPost() (types.SocialPost, error) {
	audienceName := v.Audience
	if audienceName == "" {
		audienceName = string(types.AudienceUK)
	}
	audience, err := types.ParseAudience(audienceName)
	if err != nil {
		return types.SocialPost{}, err
	}

	post := types.SocialPost{
		HeadlinePrefix:    v.HeadlinePrefix,
		HeadlineHighlight: v.HeadlineHighlight,
		Subtext:           v.Subtext,
		Audience:          audience,
		Badge:             v.Badge,
		Quote:             types.NewQuoteBlock(v.Quote, v.QuoteName, v.QuoteTitle, v.HeadshotURL),
		LogoURL:           v.LogoURL,
	}
	post.ApplyDefaults()
	if err := post.Validate(); err != nil {
		return types.SocialPost{}, fmt.Errorf("invalid social post: %s", types.FieldErrors(err)[0])
	}
	return post, nil
}
