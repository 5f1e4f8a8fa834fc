package ingestion

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jonathan/teamverse/internal/fetch"
	"github.com/jonathan/teamverse/internal/types"
)

// WebParser fetches a web page and extracts its title, main text and Markdown.
type WebParser struct {
	Options *fetch.Options
}

// NewWebParser creates a web parser. A nil opts uses fetch.DefaultOptions.
func NewWebParser(opts *fetch.Options) *WebParser {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	return &WebParser{Options: opts}
}

// Parse fetches url once and normalizes the page. Fetch failures are returned
// as *fetch.Error.
func (p *WebParser) Parse(ctx context.Context, url string) (*types.SourceDocument, error) {
	result, err := fetch.URL(ctx, url, p.Options)
	if err != nil {
		return nil, err
	}
	return ParseHTML(url, result.Body)
}

// ParseHTML normalizes an already fetched HTML page.
func ParseHTML(url, rawHTML string) (*types.SourceDocument, error) {
	title, err := fetch.ExtractTitle(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("extract title: %w", err)
	}
	content, err := fetch.ExtractMainText(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("extract main text: %w", err)
	}
	markdown, err := fetch.ToMarkdown(rawHTML)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("url", url).
		Str("title", title).
		Int("content_chars", len(content)).
		Int("markdown_chars", len(markdown)).
		Msg("parsed web page")

	return &types.SourceDocument{
		Title:    title,
		Content:  content,
		Markdown: markdown,
		URL:      url,
		Kind:     types.SourceWeb,
	}, nil
}
