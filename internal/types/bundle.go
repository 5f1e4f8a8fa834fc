//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"time"
)

// ContentBundle groups the per-audience variants of a single announcement.
// Variants are added or replaced, never removed.
type ContentBundle struct {
	SourceURL   string                  `json:"source_url,omitempty" validate:"omitempty,abshttp"`
	BlogPost    *BlogPost               `json:"blog_post,omitempty"`
	Newsletters map[Audience]Newsletter `json:"newsletters"`
	SocialPosts map[Audience]SocialPost `json:"social_posts"`
	SocialCopy  map[string]string       `json:"social_copy"`
}

// NewContentBundle creates an empty bundle for the given source.
func NewContentBundle(sourceURL string) *ContentBundle {
	return &ContentBundle{
		SourceURL:   sourceURL,
		Newsletters: make(map[Audience]Newsletter),
		SocialPosts: make(map[Audience]SocialPost),
		SocialCopy:  make(map[string]string),
	}
}

// AddNewsletter stores n under its own audience, replacing any previous variant.
func (b *ContentBundle) AddNewsletter(n Newsletter) error {
	if err := n.Validate(); err != nil {
		return err
	}
	b.Newsletters[n.Audience] = n
	return nil
}

// AddSocialPost stores p under its own audience, replacing any previous variant.
func (b *ContentBundle) AddSocialPost(p SocialPost) error {
	if err := p.Validate(); err != nil {
		return err
	}
	b.SocialPosts[p.Audience] = p
	return nil
}

// SetSocialCopy stores the post text for one platform.
func (b *ContentBundle) SetSocialCopy(platform, text string) {
	b.SocialCopy[platform] = text
}

// Validate checks the bundle and every variant it holds. Each variant must
// be stored under its own audience.
func (b *ContentBundle) Validate() error {
	if err := validate.Struct(b); err != nil {
		return err
	}
	for key, n := range b.Newsletters {
		if n.Audience != key {
			return fmt.Errorf("newsletter stored under %q has audience %q", key, n.Audience)
		}
		if err := n.Validate(); err != nil {
			return err
		}
	}
	for key, p := range b.SocialPosts {
		if p.Audience != key {
			return fmt.Errorf("social post stored under %q has audience %q", key, p.Audience)
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SourceKind identifies which parser produced a SourceDocument.
type SourceKind string

const (
	SourceWeb       SourceKind = "web"
	SourceGoogleDoc SourceKind = "google_doc"
	SourceFeed      SourceKind = "feed"
)

// SourceDocument is the normalized output of every source parser.
type SourceDocument struct {
	Title    string     `json:"title"`
	Content  string     `json:"content"`
	Markdown string     `json:"markdown"`
	URL      string     `json:"url"`
	Kind     SourceKind `json:"kind"`
}

// Quote is an attributed quotation found in source text.
type Quote struct {
	Text  string `json:"text"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// BundleFile is the on-disk record written by the generate command.
// source_url, title, content and audience are the stable fields.
type BundleFile struct {
	SourceURL   string         `json:"source_url"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	ContentHash string         `json:"content_hash,omitempty"`
	Audience    Audience       `json:"audience"`
	SourceKind  SourceKind     `json:"source_kind,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	KeyPoints   []string       `json:"key_points"`
	Quotes      []Quote        `json:"quotes"`
	Bundle      *ContentBundle `json:"bundle,omitempty"`
}
