package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/teamverse/internal/types"
)

// minKeyPointLength is the shortest point kept; anything shorter is treated as noise.
const minKeyPointLength = 6

var (
	// "Quote," said Name[, Title].
	saidQuotePattern = regexp.MustCompile(
		`(?m)"([^"]+)"[,.]?\s+(?:said|says|according to)\s+` +
			`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)` +
			`(?:,\s*(.+?))?(?:\.|$)`)

	// "Quote" - Name[, Title]
	dashQuotePattern = regexp.MustCompile(
		`(?m)"([^"]+)"\s*[-–—]\s*` +
			`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)` +
			`(?:,\s*(.+?))?(?:\.|$)`)

	bulletPattern   = regexp.MustCompile(`(?m)^\s*[-*•]\s+(.+)$`)
	numberedPattern = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+(.+)$`)
)

// ExtractQuotes finds attributed quotations in text.
//
// Quotes attributed with said/says/according to come first in document
// order, followed by dash-attributed quotes whose text was not already found.
func ExtractQuotes(text string) []types.Quote {
	quotes := []types.Quote{}
	seen := make(map[string]bool)

	for _, m := range saidQuotePattern.FindAllStringSubmatch(text, -1) {
		q := quoteFromMatch(m)
		seen[q.Text] = true
		quotes = append(quotes, q)
	}

	for _, m := range dashQuotePattern.FindAllStringSubmatch(text, -1) {
		q := quoteFromMatch(m)
		if seen[q.Text] {
			continue
		}
		seen[q.Text] = true
		quotes = append(quotes, q)
	}

	return quotes
}

func quoteFromMatch(m []string) types.Quote {
	return types.Quote{
		Text:  strings.TrimSpace(m[1]),
		Name:  strings.TrimSpace(m[2]),
		Title: strings.TrimSpace(m[3]),
	}
}

// ExtractKeyPoints returns bulleted items followed by numbered items, each
// group in document order. Items shorter than six characters are dropped.
func ExtractKeyPoints(text string) []string {
	points := []string{}
	for _, re := range []*regexp.Regexp{bulletPattern, numberedPattern} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			point := strings.TrimSpace(m[1])
			if utf8.RuneCountInString(point) < minKeyPointLength {
				continue
			}
			points = append(points, point)
		}
	}
	return points
}

// Analysis bundles every classifier result for one piece of text.
type Analysis struct {
	Audience  types.Audience `json:"audience"`
	UKScore   int            `json:"uk_score"`
	USScore   int            `json:"us_score"`
	Quotes    []types.Quote  `json:"quotes"`
	KeyPoints []string       `json:"key_points"`
}

// Analyze runs audience detection, quote extraction and key-point extraction.
func Analyze(text string) Analysis {
	uk, us := Scores(text)
	return Analysis{
		Audience:  DetectAudience(text),
		UKScore:   uk,
		USScore:   us,
		Quotes:    ExtractQuotes(text),
		KeyPoints: ExtractKeyPoints(text),
	}
}
