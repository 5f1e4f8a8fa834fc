package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/teamverse/internal/types"
)

// SourceParser normalizes one kind of source.
type SourceParser interface {
	Parse(ctx context.Context, source string) (*types.SourceDocument, error)
}

// DetectKind classifies a source locator. Feeds are never detected; they must
// be requested explicitly.
func DetectKind(source string) types.SourceKind {
	if strings.Contains(source, "docs.google.com/document") {
		return types.SourceGoogleDoc
	}
	return types.SourceWeb
}

// Parser dispatches sources to the parser for their kind.
type Parser struct {
	Web       SourceParser
	GoogleDoc SourceParser
	Feed      SourceParser
}

// NewParser wires the default parsers. creds may be nil when Google Docs
// sources are not used.
func NewParser(web *WebParser, creds CredentialProvider) *Parser {
	if web == nil {
		web = NewWebParser(nil)
	}
	return &Parser{
		Web:       web,
		GoogleDoc: NewGoogleDocsParser(creds),
		Feed:      NewFeedParser(web.Options),
	}
}

// Parse normalizes source. An empty kind is resolved with DetectKind.
func (p *Parser) Parse(ctx context.Context, source string, kind types.SourceKind) (*types.SourceDocument, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, &InvalidSourceError{Source: source, Message: "source is empty"}
	}
	if kind == "" {
		kind = DetectKind(source)
	}

	var parser SourceParser
	switch kind {
	case types.SourceWeb:
		parser = p.Web
	case types.SourceGoogleDoc:
		parser = p.GoogleDoc
	case types.SourceFeed:
		parser = p.Feed
	default:
		return nil, &InvalidSourceError{Source: source, Message: fmt.Sprintf("unknown source kind %q", kind)}
	}
	if parser == nil {
		return nil, &InvalidSourceError{Source: source, Message: fmt.Sprintf("no parser configured for %s sources", kind)}
	}
	return parser.Parse(ctx, source)
}
