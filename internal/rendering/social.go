package rendering

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/teamverse/internal/types"
	"github.com/jonathan/teamverse/internal/validation"
)

// Render outcome labels reported to a RenderObserver.
const (
	StatusOK            = "ok"
	StatusUnavailable   = "unavailable"
	StatusFailed        = "failed"
	StatusInvalidOutput = "invalid_output"
	StatusError         = "error"
)

// RenderObserver receives the outcome of every social render and validation.
type RenderObserver interface {
	ObserveRender(status string, elapsed time.Duration)
	ObserveValidation(result validation.Result)
}

// SocialRenderer renders social posts to validated PNG images.
type SocialRenderer struct {
	Locator       *BrowserLocator
	Screenshotter Screenshotter
	// TempDir is the parent for per-render scratch directories; "" uses os.TempDir.
	TempDir  string
	Observer RenderObserver
}

// NewSocialRenderer creates a renderer that drives Chrome through chromedp.
// browserOverride may be empty; timeout bounds each browser run.
func NewSocialRenderer(browserOverride string, timeout time.Duration) *SocialRenderer {
	return &SocialRenderer{
		Locator:       NewBrowserLocator(browserOverride),
		Screenshotter: &ChromeScreenshotter{Timeout: timeout},
	}
}

type socialData struct {
	Width             int
	Height            int
	Background        template.CSS
	HeadlinePrefix    string
	HeadlineHighlight string
	Subtext           string
	Flags             string
	Badge             string
	Quote             *types.QuoteBlock
	LogoURL           string
}

// SocialHTML executes the social image template for post at the given size.
func SocialHTML(post types.SocialPost, width, height int) ([]byte, error) {
	post.ApplyDefaults()
	return execute(socialTemplate, socialData{
		Width:             width,
		Height:            height,
		Background:        template.CSS(validation.EdgeColor.Hex()),
		HeadlinePrefix:    post.HeadlinePrefix,
		HeadlineHighlight: post.HeadlineHighlight,
		Subtext:           post.Subtext,
		Flags:             post.Flags(),
		Badge:             post.Badge,
		Quote:             post.Quote,
		LogoURL:           post.LogoURL,
	})
}

// Render screenshots post to outputPath at width×height (zero means the
// 1200×630 default). The image is validated with the same dimensions before
// it is moved to outputPath, so outputPath only ever holds a valid image and
// an existing file there is untouched when validation fails.
func (r *SocialRenderer) Render(ctx context.Context, post types.SocialPost, outputPath string, width, height int) (string, error) {
	start := time.Now()
	path, err := r.render(ctx, post, outputPath, width, height)
	if r.Observer != nil {
		r.Observer.ObserveRender(renderStatus(err), time.Since(start))
	}
	return path, err
}

func (r *SocialRenderer) render(ctx context.Context, post types.SocialPost, outputPath string, width, height int) (string, error) {
	if width <= 0 {
		width = validation.DefaultWidth
	}
	if height <= 0 {
		height = validation.DefaultHeight
	}

	post.ApplyDefaults()
	if err := post.Validate(); err != nil {
		return "", err
	}

	browser, err := r.Locator.Locate()
	if err != nil {
		return "", err
	}

	page, err := SocialHTML(post, width, height)
	if err != nil {
		return "", err
	}

	scratch, err := os.MkdirTemp(r.TempDir, "teamverse-render-*")
	if err != nil {
		return "", &RenderError{Message: "failed to create temp directory", Cause: err}
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	htmlPath := filepath.Join(scratch, "social-"+uuid.NewString()+".html")
	if err := os.WriteFile(htmlPath, page, 0600); err != nil {
		return "", &RenderError{Message: "failed to write temp HTML", Cause: err}
	}
	absHTML, err := filepath.Abs(htmlPath)
	if err != nil {
		return "", &RenderError{Message: "failed to resolve temp HTML path", Cause: err}
	}
	pageURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(absHTML)}).String()

	log.Debug().
		Str("browser", browser).
		Str("audience", post.Audience.String()).
		Int("width", width).
		Int("height", height).
		Msg("rendering social image")

	png, err := r.Screenshotter.Screenshot(ctx, browser, pageURL, width, height)
	if err != nil {
		return "", &RenderError{Message: "browser rendering failed", Cause: err}
	}

	if len(png) == 0 {
		return "", &RenderError{Message: "browser did not create output file"}
	}
	shotPath := filepath.Join(scratch, "social-"+uuid.NewString()+".png")
	if err := os.WriteFile(shotPath, png, 0644); err != nil {
		return "", &RenderError{Message: "failed to write screenshot", Cause: err}
	}

	opts := validation.DefaultOptions()
	opts.Width, opts.Height = width, height
	result := validation.ValidateImage(shotPath, opts)
	if r.Observer != nil {
		r.Observer.ObserveValidation(result)
	}
	if !result.Valid {
		return "", &InvalidOutputError{Path: outputPath, Result: result}
	}
	for _, warning := range result.Warnings {
		log.Warn().Str("path", outputPath).Msg(warning)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", &RenderError{Message: "failed to create output directory", Cause: err}
	}
	if err := installFile(shotPath, outputPath); err != nil {
		return "", &RenderError{Message: "failed to write output file", Cause: err}
	}

	return outputPath, nil
}

// installFile moves src to dst. When a rename is not possible, as across
// filesystems, src is copied to a temp file beside dst which is then renamed.
func installFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+"-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Chmod(tmpPath, 0644)
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpPath, dst)
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
	}
	return writeErr
}

// renderStatus labels an outcome: a failed browser run or output write is
// "failed", and a rejected post or template failure is "error".
func renderStatus(err error) string {
	var (
		unavailable *UnavailableError
		invalid     *InvalidOutputError
		renderErr   *RenderError
	)
	switch {
	case err == nil:
		return StatusOK
	case errors.As(err, &unavailable):
		return StatusUnavailable
	case errors.As(err, &invalid):
		return StatusInvalidOutput
	case errors.As(err, &renderErr):
		return StatusFailed
	default:
		return StatusError
	}
}

// OutputName is the file name used for an audience's social image in a bundle.
func OutputName(audience types.Audience) string {
	return fmt.Sprintf("social-%s.png", audience)
}
