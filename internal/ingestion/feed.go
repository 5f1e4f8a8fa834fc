package ingestion

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/teamverse/internal/fetch"
	"github.com/jonathan/teamverse/internal/types"
)

// FeedParser reads an RSS, Atom or JSON feed and normalizes its newest item.
type FeedParser struct {
	Options *fetch.Options
}

// NewFeedParser creates a feed parser. A nil opts uses fetch.DefaultOptions.
func NewFeedParser(opts *fetch.Options) *FeedParser {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	return &FeedParser{Options: opts}
}

// Parse fetches feedURL and returns its newest item as a source document.
func (p *FeedParser) Parse(ctx context.Context, feedURL string) (*types.SourceDocument, error) {
	result, err := fetch.URL(ctx, feedURL, p.Options)
	if err != nil {
		return nil, err
	}
	return ParseFeed(feedURL, result.Body)
}

// ParseFeed normalizes the newest item of an already fetched feed document.
func ParseFeed(feedURL, body string) (*types.SourceDocument, error) {
	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, &InvalidSourceError{Source: feedURL, Message: "not a parseable feed", Cause: err}
	}
	item := newestItem(feed.Items)
	if item == nil {
		return nil, &InvalidSourceError{Source: feedURL, Message: "feed has no items"}
	}

	itemHTML := item.Content
	if strings.TrimSpace(itemHTML) == "" {
		itemHTML = item.Description
	}
	content, err := fetch.ExtractMainText(itemHTML)
	if err != nil {
		return nil, err
	}
	markdown, err := fetch.ToMarkdown(itemHTML)
	if err != nil {
		return nil, err
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = feedURL
	}

	log.Debug().
		Str("feed", feedURL).
		Str("feed_title", feed.Title).
		Int("items", len(feed.Items)).
		Str("item", item.Title).
		Msg("parsed feed")

	return &types.SourceDocument{
		Title:    strings.TrimSpace(item.Title),
		Content:  content,
		Markdown: markdown,
		URL:      link,
		Kind:     types.SourceFeed,
	}, nil
}

// newestItem picks the item with the latest published (or updated) time.
// Undated items lose to dated ones; among equals the earliest listed wins.
func newestItem(items []*gofeed.Item) *gofeed.Item {
	var newest *gofeed.Item
	var newestAt time.Time
	for _, it := range items {
		if it == nil {
			continue
		}
		at := pickTime(it.PublishedParsed, it.UpdatedParsed)
		if newest == nil || at.After(newestAt) {
			newest, newestAt = it, at
		}
	}
	return newest
}

func pickTime(a, b *time.Time) time.Time {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return time.Time{}
}
