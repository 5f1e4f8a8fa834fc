package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/teamverse/internal/config"
	"github.com/jonathan/teamverse/internal/types"
)

// resetFlags restores every flag to its default so commands can be executed
// repeatedly in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = config.Default()
	t.Setenv("TEAMVERSE_OUTPUT_DIR", "")
	t.Setenv("TEAMVERSE_BROWSER", "")
	t.Setenv("TEAMVERSE_PORT", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "image.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, img))
	return path
}

func writeJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "vars.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

var edgeColor = color.RGBA{R: 26, G: 35, B: 50, A: 255}

func TestValidateCommand_Valid(t *testing.T) {
	path := writePNG(t, 1200, 630, edgeColor)

	out, err := executeCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ Image is valid\n", out)
}

func TestValidateCommand_WhiteRibbon(t *testing.T) {
	path := writePNG(t, 1200, 630, color.White)

	out, err := executeCommand(t, "validate", path)
	assert.ErrorIs(t, err, errSilentExit)
	assert.Contains(t, out, "✗ Validation failed:")
	assert.Contains(t, out, "white ribbon detected?")
	assert.Contains(t, out, "Warnings:")
}

func TestValidateCommand_NoEdges(t *testing.T) {
	path := writePNG(t, 1200, 630, color.White)

	out, err := executeCommand(t, "validate", path, "--no-edges")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Image is valid")
}

func TestValidateCommand_CustomSize(t *testing.T) {
	path := writePNG(t, 300, 200, edgeColor)

	_, err := executeCommand(t, "validate", path, "--width", "300", "--height", "200")
	require.NoError(t, err)

	out, err := executeCommand(t, "validate", path)
	assert.ErrorIs(t, err, errSilentExit)
	assert.Contains(t, out, "Width is 300, expected 1200")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	out, err := executeCommand(t, "validate", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, errSilentExit)
	assert.Contains(t, out, "Image file does not exist")
}

func TestValidateCommand_RequiresArg(t *testing.T) {
	_, err := executeCommand(t, "validate")
	assert.Error(t, err)
}

func TestNewsletterCommand(t *testing.T) {
	vars := writeJSON(t, map[string]string{
		"subject":          "March update",
		"preview_text":     "What we shipped",
		"audience":         "us",
		"hero_label":       "Update",
		"hero_title":       "New features",
		"hero_subtitle":    "Across the app",
		"quote_text":       "Great progress",
		"quote_name":       "Ann Lee",
		"body_html":        "<p>Details</p>",
		"cta_primary_text": "Read more",
		"cta_primary_url":  "https://policyengine.org",
	})
	output := filepath.Join(t.TempDir(), "out", "newsletter.html")

	out, err := executeCommand(t, "newsletter", "--vars", vars, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated: ")

	html, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>March update</title>")
	assert.Contains(t, string(html), "<p>Details</p>")
	assert.Contains(t, string(html), "Great progress")
}

func TestNewsletterCommand_Errors(t *testing.T) {
	_, err := executeCommand(t, "newsletter", "--output", filepath.Join(t.TempDir(), "x.html"))
	assert.Error(t, err, "vars is required")

	vars := writeJSON(t, map[string]string{"subject": "Only a subject"})
	_, err = executeCommand(t, "newsletter", "--vars", vars, "--output", filepath.Join(t.TempDir(), "x.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid newsletter")
}

func TestSocialCommand_Errors(t *testing.T) {
	_, err := executeCommand(t, "social", "--headline-prefix", "x")
	assert.Error(t, err, "output is required")

	_, err = executeCommand(t, "social", "--audience", "fr", "--output", filepath.Join(t.TempDir(), "x.png"))
	var audienceErr *types.InvalidAudienceError
	assert.ErrorAs(t, err, &audienceErr)
}

func TestMergeSocialVars(t *testing.T) {
	flags := pflag.NewFlagSet("social", pflag.ContinueOnError)
	flagVals := socialVars{}
	flags.StringVar(&flagVals.HeadlinePrefix, "headline-prefix", "", "")
	flags.StringVar(&flagVals.HeadlineHighlight, "headline-highlight", "", "")
	flags.StringVar(&flagVals.Subtext, "subtext", "", "")
	flags.StringVar(&flagVals.Audience, "audience", "uk", "")
	flags.StringVar(&flagVals.Badge, "badge", types.DefaultBadge, "")
	flags.StringVar(&flagVals.Quote, "quote", "", "")
	flags.StringVar(&flagVals.QuoteName, "quote-name", "", "")
	flags.StringVar(&flagVals.QuoteTitle, "quote-title", "", "")
	flags.StringVar(&flagVals.HeadshotURL, "headshot-url", "", "")
	require.NoError(t, flags.Parse([]string{"--headline-prefix", "From flag"}))

	fromFile := socialVars{
		HeadlinePrefix:    "From file",
		HeadlineHighlight: "Highlight",
		Audience:          "us",
		Quote:             "Quoted",
		QuoteName:         "Ann Lee",
	}

	got := mergeSocialVars(fromFile, flagVals, flags)
	assert.Equal(t, "From flag", got.HeadlinePrefix)
	assert.Equal(t, "Highlight", got.HeadlineHighlight)
	// An unset flag's default never overrides the file.
	assert.Equal(t, "us", got.Audience)
	assert.Equal(t, types.DefaultBadge, got.Badge)
	assert.Equal(t, "Quoted", got.Quote)
	assert.Equal(t, "Ann Lee", got.QuoteName)
}

func TestSocialVars_ToSocialPost(t *testing.T) {
	post, err := socialVars{HeadlinePrefix: "A", Quote: "  "}.toSocialPost()
	require.NoError(t, err)
	assert.Equal(t, types.AudienceUK, post.Audience)
	assert.Nil(t, post.Quote)
	assert.Equal(t, types.DefaultLogoURL, post.LogoURL)

	post, err = socialVars{Audience: "global", Quote: "Hi", QuoteName: "Ann", HeadshotURL: "https://x.org/a.png"}.toSocialPost()
	require.NoError(t, err)
	require.NotNil(t, post.Quote)
	assert.Equal(t, "https://x.org/a.png", post.Quote.HeadshotURL)

	_, err = socialVars{Quote: "Hi", HeadshotURL: "not-a-url"}.toSocialPost()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "headshot_url")
}

const articleHTML = `<html><head><title>Budget analysis</title></head><body>
<nav>Menu</nav>
<article>
<p>The Chancellor announced changes to National Insurance.</p>
<ul><li>Thresholds rise in April</li></ul>
</article>
</body></html>`

func TestGenerateCommand_Web(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	dir := t.TempDir()
	out, err := executeCommand(t, "generate", srv.URL+"/research", "--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated content bundle from: Budget analysis")
	assert.Contains(t, out, "Audience: uk")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "content_bundle-"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	var file types.BundleFile
	require.NoError(t, json.Unmarshal(data, &file))
	assert.Equal(t, srv.URL+"/research", file.SourceURL)
	assert.Equal(t, types.AudienceUK, file.Audience)
}

func TestGenerateCommand_AudienceOverrideAndPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	out, err := executeCommand(t, "generate", srv.URL, "--output-dir", t.TempDir(), "--audience", "us", "--preview")
	require.NoError(t, err)
	assert.Contains(t, out, "Audience: us")
	assert.Contains(t, out, "Chancellor")
}

func TestGenerateCommand_Feed(t *testing.T) {
	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Blog</title>
<item><title>Newest post</title><link>https://policyengine.org/post</link>
<pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate><description>Some text</description></item>
</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	out, err := executeCommand(t, "generate", srv.URL, "--output-dir", t.TempDir(), "--feed")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated content bundle from: Newest post")
}

func TestGenerateCommand_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	_, err := executeCommand(t, "generate", srv.URL, "--output-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP status 404")

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestGenerateCommand_InvalidAudience(t *testing.T) {
	_, err := executeCommand(t, "generate", "https://example.com", "--audience", "fr", "--output-dir", t.TempDir())
	var audienceErr *types.InvalidAudienceError
	assert.ErrorAs(t, err, &audienceErr)
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teamverse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  width: 300\n  height: 200\n"), 0644))
	image := writePNG(t, 300, 200, edgeColor)

	out, err := executeCommand(t, "--config", path, "validate", image)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Image is valid")
}

func TestConfigFlag_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teamverse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  width: -1\n"), 0644))

	_, err := executeCommand(t, "--config", path, "validate", "x.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.width")
}

func TestPublishCommand_RequiresPost(t *testing.T) {
	_, err := executeCommand(t, "publish")
	assert.Error(t, err)
}

func TestPublishCommand_MissingRepo(t *testing.T) {
	post := writeJSON(t, types.BlogPost{Title: "Hello", Content: "Body", Authors: []string{"ann-lee"}})

	_, err := executeCommand(t, "publish", "--post", post, "--repo", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestRenderBundleCommand_NoSocialPosts(t *testing.T) {
	bundle := writeJSON(t, map[string]any{
		"source_url": "https://policyengine.org",
		"title":      "T",
		"content":    "C",
		"audience":   "uk",
	})

	_, err := executeCommand(t, "render-bundle", bundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no social posts")
}

func TestRenderBundleCommand_SchemaFailure(t *testing.T) {
	bundle := writeJSON(t, map[string]any{"title": "T"})

	_, err := executeCommand(t, "render-bundle", bundle)
	assert.Error(t, err)
}

func TestRenderBundleCommand_CustomSchema(t *testing.T) {
	bundle := writeJSON(t, map[string]any{"title": "T"})
	schema := writeJSON(t, map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"type":     "object",
		"required": []string{"title"},
	})

	_, err := executeCommand(t, "render-bundle", bundle, "--schema", schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no social posts")
}

func TestRenderBundleCommand_MismatchedAudienceKey(t *testing.T) {
	bundle := writeJSON(t, map[string]any{
		"source_url": "https://policyengine.org",
		"title":      "T",
		"content":    "C",
		"audience":   "uk",
		"bundle": map[string]any{
			"social_posts": map[string]any{
				"uk": map[string]any{"headline_prefix": "US copy", "audience": "us"},
			},
		},
	})
	outDir := t.TempDir()

	_, err := executeCommand(t, "render-bundle", bundle, "--output-dir", outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `social post stored under "uk" has audience "us"`)
	assert.NoFileExists(t, filepath.Join(outDir, "social-uk.png"))
}
