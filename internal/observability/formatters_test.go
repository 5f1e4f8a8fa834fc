package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/teamverse/internal/classify"
	"github.com/jonathan/teamverse/internal/types"
	"github.com/jonathan/teamverse/internal/validation"
)

func TestPrintSourceDocument(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSourceDocument(&types.SourceDocument{
		Title:   "Budget analysis",
		Content: "Some content",
		URL:     "https://policyengine.org/uk/research/budget",
		Kind:    types.SourceWeb,
	})
	output := buf.String()

	assert.Contains(t, output, "PARSED SOURCE")
	assert.Contains(t, output, "Budget analysis")
	assert.Contains(t, output, "web")
	assert.Contains(t, output, "12 characters")
}

func TestPrintSourceDocument_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSourceDocument(nil)
	assert.Empty(t, buf.String())
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(classify.Analysis{
		Audience:  types.AudienceUK,
		UKScore:   3,
		KeyPoints: []string{"one point", "two point", "three point", "four point", "five point", "six point"},
		Quotes: []types.Quote{
			{Text: "A fair change", Name: "Ann Lee", Title: "Analyst"},
			{Text: "Well done", Name: "Bob Jones"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "CONTENT ANALYSIS")
	assert.Contains(t, output, "Audience: uk (uk=3, us=0)")
	assert.Contains(t, output, "five point")
	assert.NotContains(t, output, "six point")
	assert.Contains(t, output, "... and 1 more")
	assert.Contains(t, output, "- Ann Lee, Analyst")
	assert.Contains(t, output, "- Bob Jones")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintValidationResult_Valid(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintValidationResult(validation.Result{Valid: true})
	assert.Equal(t, "✓ Image is valid\n", buf.String())
}

func TestPrintValidationResult_Invalid(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintValidationResult(validation.Result{
		Valid:    false,
		Errors:   []string{"Width is 800, expected 1200"},
		Warnings: []string{"Right edge pixel at y=0 is (255, 255, 255), expected near (26, 35, 50)"},
	})

	want := "✗ Validation failed:\n" +
		"  - Width is 800, expected 1200\n" +
		"Warnings:\n" +
		"  - Right edge pixel at y=0 is (255, 255, 255), expected near (26, 35, 50)\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Budget analysis\n\nThe **Chancellor** spoke.", "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget analysis")
	assert.Contains(t, out, "Chancellor")
}

func TestPrintMarkdown(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Style = "notty"

	require.NoError(t, p.PrintMarkdown("- first item"))
	assert.Contains(t, buf.String(), "first item")
}
