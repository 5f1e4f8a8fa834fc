package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "title element wins",
			html: `<html><head><title> Budget analysis </title><meta property="og:title" content="OG"></head><body><h1>Heading</h1></body></html>`,
			want: "Budget analysis",
		},
		{
			name: "og title fallback",
			html: `<html><head><meta property="og:title" content=" OG Title "></head><body><h1>Heading</h1></body></html>`,
			want: "OG Title",
		},
		{
			name: "first h1 fallback",
			html: `<html><body><h1>First</h1><h1>Second</h1></body></html>`,
			want: "First",
		},
		{
			name: "nothing found",
			html: `<html><body><p>No heading</p></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTitle(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractMainText_StripsChrome(t *testing.T) {
	html := `
	<html>
		<body>
			<header>Site header</header>
			<nav>Navigation</nav>
			<article>
				<h1>Main Content</h1>
				<p>This is the main content.</p>
				<script>var x = 1;</script>
			</article>
			<aside>Related links</aside>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html)
	require.NoError(t, err)
	assert.Equal(t, "Main Content\nThis is the main content.", text)
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
	assert.NotContains(t, text, "var x")
}

func TestExtractMainText_ArticleBeforeMain(t *testing.T) {
	html := `<html><body><main><p>Main text</p></main><article><p>Article text</p></article></body></html>`

	text, err := ExtractMainText(html)
	require.NoError(t, err)
	assert.Equal(t, "Article text", text)
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `<html><body><div>Outside</div><main><h2>Inside</h2><p>Body</p></main></body></html>`

	text, err := ExtractMainText(html)
	require.NoError(t, err)
	assert.Equal(t, "Inside\nBody", text)
}

func TestExtractMainText_ContentClass(t *testing.T) {
	html := `<html><body><div class="menu">Menu</div><div class="Blog-Post-Body"><p>Post body</p></div></body></html>`

	text, err := ExtractMainText(html)
	require.NoError(t, err)
	assert.Equal(t, "Post body", text)
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `<html><body><div><p>Just a body</p></div><p>Second</p></body></html>`

	text, err := ExtractMainText(html)
	require.NoError(t, err)
	assert.Equal(t, "Just a body\nSecond", text)
}

func TestExtractMainText_CustomSelectors(t *testing.T) {
	html := `<html><body><article>Article</article><section id="summary">Summary</section></body></html>`

	text, err := ExtractMainText(html, "#summary")
	require.NoError(t, err)
	assert.Equal(t, "Summary", text)
}

func TestToMarkdown(t *testing.T) {
	html := `<html><body><h1>Title</h1><p>Read <a href="https://policyengine.org">more</a>.</p><img src="x.png" alt="chart"><ul><li>One</li></ul></body></html>`

	markdown, err := ToMarkdown(html)
	require.NoError(t, err)
	assert.Contains(t, markdown, "# Title")
	assert.Contains(t, markdown, "[more](https://policyengine.org)")
	assert.Contains(t, markdown, "- One")
	assert.NotContains(t, markdown, "x.png")
}
