package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jonathan/teamverse/internal/classify"
	"github.com/jonathan/teamverse/internal/types"
	"github.com/jonathan/teamverse/internal/validation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// previewWidth is the word wrap width of markdown previews
	previewWidth = 80
)

// Printer handles formatted terminal output for the CLI.
type Printer struct {
	out io.Writer
	// Style is the glamour style used by PrintMarkdown. Empty means auto-detect.
	Style string
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// PrintSourceDocument outputs a summary of a parsed source.
func (p *Printer) PrintSourceDocument(doc *types.SourceDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:  %s\n", doc.Title))
	sb.WriteString(fmt.Sprintf("Kind:   %s\n", doc.Kind))
	sb.WriteString(fmt.Sprintf("URL:    %s\n", doc.URL))
	sb.WriteString(fmt.Sprintf("Length: %d characters", len([]rune(doc.Content))))

	p.printBox("PARSED SOURCE", sb.String())
}

// PrintAnalysis outputs the classifier results for a source.
func (p *Printer) PrintAnalysis(a classify.Analysis) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Audience: %s (uk=%d, us=%d)\n", a.Audience, a.UKScore, a.USScore))

	if len(a.KeyPoints) > 0 {
		sb.WriteString("\nKey points:\n")
		count := min(len(a.KeyPoints), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", a.KeyPoints[i]))
		}
		if len(a.KeyPoints) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(a.KeyPoints)-maxItemsToShow))
		}
	}

	if len(a.Quotes) > 0 {
		sb.WriteString("\nQuotes:\n")
		count := min(len(a.Quotes), 3)
		for i := 0; i < count; i++ {
			q := a.Quotes[i]
			sb.WriteString(fmt.Sprintf("  \"%s\"\n    %s\n", q.Text, attribution(q)))
		}
		if len(a.Quotes) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(a.Quotes)-3))
		}
	}

	p.printBox("CONTENT ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

func attribution(q types.Quote) string {
	if q.Title == "" {
		return "- " + q.Name
	}
	return fmt.Sprintf("- %s, %s", q.Name, q.Title)
}

// PrintValidationResult outputs an image validation result as ✓/✗ lines.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidationResult(result validation.Result) {
	if result.Valid {
		fmt.Fprintln(p.out, "✓ Image is valid")
	} else {
		fmt.Fprintln(p.out, "✗ Validation failed:")
		for _, e := range result.Errors {
			fmt.Fprintf(p.out, "  - %s\n", e)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(p.out, "Warnings:")
		for _, w := range result.Warnings {
			fmt.Fprintf(p.out, "  - %s\n", w)
		}
	}
}

// PrintMarkdown renders markdown for the terminal with glamour.
func (p *Printer) PrintMarkdown(markdown string) error {
	rendered, err := RenderMarkdown(markdown, p.Style)
	if err != nil {
		return err
	}
	_, err = io.WriteString(p.out, rendered)
	return err
}

// RenderMarkdown styles markdown for terminal display. An empty style picks
// one from the terminal background.
func RenderMarkdown(markdown, style string) (string, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}

	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(previewWidth))
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
