package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/teamverse/internal/types"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>PolicyEngine blog</title>
  <link>https://policyengine.org/blog</link>
  <item>
    <title>Older post</title>
    <link>https://policyengine.org/blog/older</link>
    <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
    <description>&lt;p&gt;Old news&lt;/p&gt;</description>
  </item>
  <item>
    <title> Newest post </title>
    <link>https://policyengine.org/blog/newest</link>
    <pubDate>Fri, 01 Mar 2024 10:00:00 GMT</pubDate>
    <description>&lt;p&gt;Fresh &lt;a href="https://policyengine.org"&gt;analysis&lt;/a&gt;&lt;/p&gt;&lt;ul&gt;&lt;li&gt;Point one here&lt;/li&gt;&lt;/ul&gt;</description>
  </item>
</channel>
</rss>`

func TestFeedParser_NewestItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer server.Close()

	doc, err := NewFeedParser(nil).Parse(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Newest post", doc.Title)
	assert.Equal(t, "https://policyengine.org/blog/newest", doc.URL)
	assert.Equal(t, types.SourceFeed, doc.Kind)
	assert.Equal(t, "Fresh\nanalysis\nPoint one here", doc.Content)
	assert.Contains(t, doc.Markdown, "[analysis](https://policyengine.org)")
	assert.Contains(t, doc.Markdown, "- Point one here")
}

func TestParseFeed_Atom(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Updates</title>
  <entry>
    <title>Only entry</title>
    <link href="https://example.com/entry"/>
    <updated>2024-05-01T12:00:00Z</updated>
    <content type="html">&lt;p&gt;Entry body&lt;/p&gt;</content>
  </entry>
</feed>`

	doc, err := ParseFeed("https://example.com/atom.xml", atom)
	require.NoError(t, err)
	assert.Equal(t, "Only entry", doc.Title)
	assert.Equal(t, "https://example.com/entry", doc.URL)
	assert.Equal(t, "Entry body", doc.Content)
}

func TestParseFeed_Invalid(t *testing.T) {
	_, err := ParseFeed("https://example.com/feed", "this is not a feed")
	var invalid *InvalidSourceError
	assert.ErrorAs(t, err, &invalid)
}

func TestParseFeed_NoItems(t *testing.T) {
	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`
	_, err := ParseFeed("https://example.com/feed", empty)
	assert.ErrorContains(t, err, "feed has no items")
}
