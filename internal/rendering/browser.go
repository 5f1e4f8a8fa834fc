package rendering

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// DefaultBrowserPaths are checked in order before falling back to PATH lookup.
var DefaultBrowserPaths = []string{
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"google-chrome",
}

// BrowserLocator finds a Chrome-compatible executable.
type BrowserLocator struct {
	// Override, when set, is used as-is without searching.
	Override string
	Paths    []string
	LookPath func(file string) (string, error)
}

// NewBrowserLocator returns a locator over DefaultBrowserPaths and the
// process PATH. A non-empty override skips the search.
func NewBrowserLocator(override string) *BrowserLocator {
	return &BrowserLocator{
		Override: override,
		Paths:    DefaultBrowserPaths,
		LookPath: exec.LookPath,
	}
}

// Locate returns the first candidate that exists on disk or resolves on PATH.
func (l *BrowserLocator) Locate() (string, error) {
	if l.Override != "" {
		return l.Override, nil
	}
	for _, path := range l.Paths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		if l.LookPath == nil {
			continue
		}
		if resolved, err := l.LookPath(path); err == nil {
			return resolved, nil
		}
	}
	return "", &UnavailableError{Searched: l.Paths}
}

// Screenshotter captures a page as a PNG of exactly width×height pixels.
type Screenshotter interface {
	Screenshot(ctx context.Context, browser, pageURL string, width, height int) ([]byte, error)
}

// ChromeScreenshotter drives a headless browser process through chromedp.
type ChromeScreenshotter struct {
	Timeout time.Duration
}

// Screenshot launches browser, loads pageURL at the given viewport and
// returns the captured PNG. The browser process is stopped before returning.
func (s *ChromeScreenshotter) Screenshot(ctx context.Context, browser, pageURL string, width, height int) ([]byte, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.ExecPath(browser),
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("hide-scrollbars", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(width, height),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if s.Timeout > 0 {
		browserCtx, cancel = context.WithTimeout(browserCtx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("browser screenshot failed: %w", err)
	}

	log.Debug().
		Str("browser", browser).
		Int("bytes", len(buf)).
		Dur("elapsed", time.Since(start)).
		Msg("captured screenshot")

	return buf, nil
}
