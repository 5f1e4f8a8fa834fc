// Package pipeline provides the high-level orchestration for the generate command:
// parse a source, classify it and persist a content bundle file.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/teamverse/internal/classify"
	"github.com/jonathan/teamverse/internal/ingestion"
	"github.com/jonathan/teamverse/internal/schemas"
	"github.com/jonathan/teamverse/internal/types"
)

// Progress steps emitted during Generate.
const (
	StepParse   = "parse_source"
	StepAnalyze = "analyze"
	StepWrite   = "write_bundle"
)

// bundleTimeLayout is the timestamp embedded in bundle file names.
const bundleTimeLayout = "20060102T150405Z"

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// SourceParser turns a source reference into a normalized document.
// *ingestion.Parser satisfies it.
type SourceParser interface {
	Parse(ctx context.Context, source string, kind types.SourceKind) (*types.SourceDocument, error)
}

// GenerateOptions holds the inputs of one generate run.
type GenerateOptions struct {
	Source string
	// Kind forces a parser; empty detects it from Source.
	Kind types.SourceKind
	// Audience overrides the detected audience when set.
	Audience   types.Audience
	OutputDir  string
	OnProgress ProgressCallback
}

// GenerateResult describes the bundle file written by Generate.
type GenerateResult struct {
	Path     string
	File     *types.BundleFile
	Document *types.SourceDocument
	Analysis classify.Analysis
}

// Generator runs the generate flow. Now and NewID are replaceable for tests.
type Generator struct {
	Parser SourceParser
	Now    func() time.Time
	NewID  func() string
}

// NewGenerator creates a Generator backed by parser.
func NewGenerator(parser SourceParser) *Generator {
	return &Generator{
		Parser: parser,
		Now:    time.Now,
		NewID:  func() string { return uuid.NewString()[:8] },
	}
}

func emitProgress(opts *GenerateOptions, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Generate parses the source, classifies its content and writes a new
// schema-checked bundle file into OutputDir. Existing files are never touched.
func (g *Generator) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	if g.Parser == nil {
		return nil, errors.New("no source parser configured")
	}
	if opts.Audience != "" {
		if _, err := types.ParseAudience(string(opts.Audience)); err != nil {
			return nil, err
		}
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	emitProgress(&opts, StepParse, "Parsing "+opts.Source, nil)
	doc, err := g.Parser.Parse(ctx, opts.Source, opts.Kind)
	if err != nil {
		return nil, err
	}
	emitProgress(&opts, StepParse, "Parsed "+doc.Title, doc)

	analysis := classify.Analyze(doc.Content)
	audience := analysis.Audience
	if opts.Audience != "" {
		audience = opts.Audience
	}
	log.Debug().
		Str("audience", string(audience)).
		Int("uk_score", analysis.UKScore).
		Int("us_score", analysis.USScore).
		Int("key_points", len(analysis.KeyPoints)).
		Int("quotes", len(analysis.Quotes)).
		Msg("analyzed source")
	emitProgress(&opts, StepAnalyze, fmt.Sprintf("Audience: %s", audience), analysis)

	sourceURL := opts.Source
	if doc.URL != "" {
		sourceURL = doc.URL
	}

	bundle := types.NewContentBundle(sourceURL)
	if err := bundle.AddSocialPost(DraftSocialPost(doc, analysis, audience)); err != nil {
		return nil, fmt.Errorf("failed to draft social post: %w", err)
	}

	now := g.Now().UTC()
	file := &types.BundleFile{
		SourceURL:   sourceURL,
		Title:       doc.Title,
		Content:     doc.Content,
		ContentHash: ingestion.ContentHash(doc.Content),
		Audience:    audience,
		SourceKind:  doc.Kind,
		GeneratedAt: now,
		KeyPoints:   nonNil(analysis.KeyPoints),
		Quotes:      nonEmptyQuotes(analysis.Quotes),
		Bundle:      bundle,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode content bundle: %w", err)
	}
	if err := schemas.ValidateBundle(data); err != nil {
		return nil, fmt.Errorf("content bundle failed schema check: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outputDir, BundleFileName(now, g.NewID()))
	if err := writeNew(path, append(data, '\n')); err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Str("audience", string(audience)).Msg("wrote content bundle")
	emitProgress(&opts, StepWrite, "Wrote "+path, nil)

	return &GenerateResult{Path: path, File: file, Document: doc, Analysis: analysis}, nil
}

// BundleFileName is the file name of a bundle generated at t.
func BundleFileName(t time.Time, id string) string {
	return fmt.Sprintf("content_bundle-%s-%s.json", t.UTC().Format(bundleTimeLayout), id)
}

// DraftSocialPost builds a first social image draft from a parsed source,
// spelled for the audience.
func DraftSocialPost(doc *types.SourceDocument, analysis classify.Analysis, audience types.Audience) types.SocialPost {
	post := types.SocialPost{
		HeadlineHighlight: classify.LocalizeSpelling(doc.Title, audience),
		Audience:          audience,
	}
	if len(analysis.KeyPoints) > 0 {
		post.Subtext = classify.LocalizeSpelling(analysis.KeyPoints[0], audience)
	}
	for _, q := range analysis.Quotes {
		if qb := types.NewQuoteBlock(classify.LocalizeSpelling(q.Text, audience), q.Name, q.Title, ""); qb != nil {
			post.Quote = qb
			break
		}
	}
	post.ApplyDefaults()
	return post
}

// writeNew creates path exclusively so an existing bundle is never overwritten.
func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create bundle file %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write bundle file %s: %w", path, err)
	}
	return f.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonEmptyQuotes(quotes []types.Quote) []types.Quote {
	out := make([]types.Quote, 0, len(quotes))
	for _, q := range quotes {
		if strings.TrimSpace(q.Text) != "" {
			out = append(out, q)
		}
	}
	return out
}
