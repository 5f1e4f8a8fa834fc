//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"unicode"
)

// DefaultBadge is the badge text used when a social post does not set one.
const DefaultBadge = "Major Milestone"

// DefaultLogoURL is the white organization logo rendered on social images.
const DefaultLogoURL = "https://raw.githubusercontent.com/PolicyEngine/policyengine-app/master/src/images/logos/policyengine/white.png"

// QuoteBlock is a pull quote with attribution. It is always embedded by pointer; nil means no quote.
type QuoteBlock struct {
	Text        string `json:"text" validate:"required"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	HeadshotURL string `json:"headshot_url,omitempty" validate:"omitempty,abshttp"`
}

// NewQuoteBlock returns nil when text is blank so empty quotes are never attached.
func NewQuoteBlock(text, name, title, headshotURL string) *QuoteBlock {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &QuoteBlock{
		Text:        text,
		Name:        strings.TrimSpace(name),
		Title:       strings.TrimSpace(title),
		HeadshotURL: strings.TrimSpace(headshotURL),
	}
}

// SocialPost is the content of one social media image.
type SocialPost struct {
	HeadlinePrefix    string      `json:"headline_prefix"`
	HeadlineHighlight string      `json:"headline_highlight"`
	Subtext           string      `json:"subtext"`
	Audience          Audience    `json:"audience" validate:"required,audience"`
	Badge             string      `json:"badge,omitempty"`
	Quote             *QuoteBlock `json:"quote,omitempty"`
	LogoURL           string      `json:"logo_url,omitempty" validate:"omitempty,abshttp"`
}

// ApplyDefaults fills the badge and logo when unset.
func (p *SocialPost) ApplyDefaults() {
	if p.Badge == "" {
		p.Badge = DefaultBadge
	}
	if p.LogoURL == "" {
		p.LogoURL = DefaultLogoURL
	}
}

// Flags is derived from the audience and never stored.
func (p *SocialPost) Flags() string {
	return p.Audience.Flags()
}

// Validate checks the post against its field constraints.
func (p *SocialPost) Validate() error {
	return validate.Struct(p)
}

// Newsletter is the content of one newsletter email.
type Newsletter struct {
	Subject          string      `json:"subject" validate:"required"`
	PreviewText      string      `json:"preview_text"`
	Audience         Audience    `json:"audience" validate:"required,audience"`
	HeroLabel        string      `json:"hero_label"`
	HeroTitle        string      `json:"hero_title" validate:"required"`
	HeroSubtitle     string      `json:"hero_subtitle"`
	Quote            *QuoteBlock `json:"quote,omitempty"`
	BodyHTML         string      `json:"body_html"`
	CTAPrimaryText   string      `json:"cta_primary_text" validate:"required"`
	CTAPrimaryURL    string      `json:"cta_primary_url" validate:"required,abshttp"`
	CTASecondaryText string      `json:"cta_secondary_text,omitempty" validate:"required_with=CTASecondaryURL"`
	CTASecondaryURL  string      `json:"cta_secondary_url,omitempty" validate:"omitempty,abshttp"`
}

// HasSecondaryCTA reports whether the optional second call to action is present.
func (n *Newsletter) HasSecondaryCTA() bool {
	return n.CTASecondaryURL != ""
}

// Validate checks the newsletter against its field constraints.
func (n *Newsletter) Validate() error {
	return validate.Struct(n)
}

// BlogPost is a markdown article with its listing metadata.
type BlogPost struct {
	Title         string      `json:"title" validate:"required"`
	Description   string      `json:"description"`
	Content       string      `json:"content" validate:"required"`
	Authors       []string    `json:"authors" validate:"required,min=1,dive,required"`
	Tags          []string    `json:"tags"`
	ImageFilename string      `json:"image_filename,omitempty"`
	Social        *SocialPost `json:"social,omitempty"`
}

// NormalizeTags removes duplicate and blank tags, keeping first occurrences in order.
func (b *BlogPost) NormalizeTags() {
	seen := make(map[string]bool, len(b.Tags))
	tags := b.Tags[:0]
	for _, tag := range b.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	b.Tags = tags
}

// Slug derives the file and branch slug from the title.
func (b *BlogPost) Slug() string {
	var sb strings.Builder
	for _, r := range strings.ToLower(b.Title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			sb.WriteRune(r)
		}
	}
	slug := strings.Join(strings.Fields(sb.String()), "-")
	if runes := []rune(slug); len(runes) > 50 {
		slug = string(runes[:50])
	}
	return slug
}

// ImageName returns the configured image filename or <slug>.png.
func (b *BlogPost) ImageName() string {
	if b.ImageFilename != "" {
		return b.ImageFilename
	}
	return b.Slug() + ".png"
}

// Validate checks the blog post and its optional social post.
func (b *BlogPost) Validate() error {
	return validate.Struct(b)
}
