package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/teamverse/internal/types"
)

// untitledDocument is used when a document carries no title.
const untitledDocument = "Untitled"

var docIDPattern = regexp.MustCompile(`(?:https?://)?docs\.google\.com/document/d/([a-zA-Z0-9_-]+)`)

// ExtractDocID returns the document ID from any Google Docs URL form.
func ExtractDocID(url string) (string, error) {
	m := docIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", &InvalidSourceError{Source: url, Message: "not a Google Docs URL"}
	}
	return m[1], nil
}

// DocumentFetcher retrieves a Google Docs document by ID.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, docID string) (*docs.Document, error)
}

// APIDocumentFetcher fetches documents through the Google Docs API.
type APIDocumentFetcher struct {
	Credentials CredentialProvider
	// ClientOptions are appended after the credential token source.
	ClientOptions []option.ClientOption
}

// FetchDocument implements DocumentFetcher.
func (f *APIDocumentFetcher) FetchDocument(ctx context.Context, docID string) (*docs.Document, error) {
	var opts []option.ClientOption
	if f.Credentials != nil {
		ts, err := f.Credentials.TokenSource(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithTokenSource(ts))
	}
	opts = append(opts, f.ClientOptions...)

	srv, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create docs service: %w", err)
	}

	doc, err := srv.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", docID, err)
	}
	return doc, nil
}

// GoogleDocsParser turns a Google Docs URL into a source document.
type GoogleDocsParser struct {
	Fetcher DocumentFetcher
}

// NewGoogleDocsParser creates a parser backed by the Docs API using creds.
func NewGoogleDocsParser(creds CredentialProvider) *GoogleDocsParser {
	return &GoogleDocsParser{Fetcher: &APIDocumentFetcher{Credentials: creds}}
}

// Parse resolves url to a document ID, fetches it and concatenates its text.
func (p *GoogleDocsParser) Parse(ctx context.Context, url string) (*types.SourceDocument, error) {
	docID, err := ExtractDocID(url)
	if err != nil {
		return nil, err
	}
	if p.Fetcher == nil {
		return nil, &CredentialsError{Message: "no document fetcher configured"}
	}

	doc, err := p.Fetcher.FetchDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	title := doc.Title
	if title == "" {
		title = untitledDocument
	}
	content := DocumentText(doc)

	log.Debug().
		Str("doc_id", docID).
		Str("title", title).
		Int("content_chars", len(content)).
		Msg("parsed google doc")

	return &types.SourceDocument{
		Title:    title,
		Content:  content,
		Markdown: content,
		URL:      url,
		Kind:     types.SourceGoogleDoc,
	}, nil
}

// DocumentText concatenates the text runs of every paragraph in body order.
func DocumentText(doc *docs.Document) string {
	if doc == nil || doc.Body == nil {
		return ""
	}
	var sb strings.Builder
	for _, item := range doc.Body.Content {
		if item.Paragraph == nil {
			continue
		}
		for _, element := range item.Paragraph.Elements {
			if element.TextRun != nil {
				sb.WriteString(element.TextRun.Content)
			}
		}
	}
	return sb.String()
}
