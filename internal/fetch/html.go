package fetch

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// noiseSelector lists page chrome removed before text extraction.
const noiseSelector = "nav, header, footer, aside, script, style, noscript"

// contentClassPattern matches container classes that usually hold an article body.
var contentClassPattern = regexp.MustCompile(`(?i)article|content|post`)

// ExtractTitle returns the page title, falling back to og:title and then the
// first h1. It returns "" when none is present.
func ExtractTitle(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	if title := doc.Find("title").First(); title.Length() > 0 {
		return strings.TrimSpace(title.Text()), nil
	}
	if og := doc.Find(`meta[property="og:title"]`).First(); og.Length() > 0 {
		content, _ := og.Attr("content")
		return strings.TrimSpace(content), nil
	}
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		return strings.TrimSpace(h1.Text()), nil
	}
	return "", nil
}

// ExtractMainText parses HTML and returns the main body text, one text node
// per line. Page chrome is removed first. The content container is the first
// match of contentSelectors, or when none are given: article, main, any element
// whose class looks like an article container, then body.
func ExtractMainText(rawHTML string, contentSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	var main *goquery.Selection
	if len(contentSelectors) > 0 {
		main = firstMatch(doc, contentSelectors...)
	} else {
		main = firstMatch(doc, "article", "main")
		if main == nil {
			main = firstWithContentClass(doc)
		}
	}
	if main == nil {
		main = doc.Find("body").First()
	}

	return joinTextNodes(main), nil
}

// ToMarkdown converts a full HTML page to Markdown. Images are dropped and
// links are kept.
func ToMarkdown(rawHTML string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Remove("img")

	markdown, err := converter.ConvertString(rawHTML)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

func firstMatch(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			return selection.First()
		}
	}
	return nil
}

func firstWithContentClass(doc *goquery.Document) *goquery.Selection {
	match := doc.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return contentClassPattern.MatchString(class)
	})
	if match.Length() == 0 {
		return nil
	}
	return match.First()
}

// joinTextNodes walks the selection in document order, trimming each text
// node and joining the non-empty ones with newlines.
func joinTextNodes(sel *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}
