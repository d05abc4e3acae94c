// Package fetcher retrieves fully-rendered HTML for a URL. The primary
// strategy drives a headless Chrome instance so client-rendered pages are
// captured after hydration; when no browser runtime is available the
// fetcher degrades to a plain HTTP GET, which returns the server-rendered
// document only.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/octavebahoun/docscrap/internal/apperrors"
	"github.com/octavebahoun/docscrap/internal/config"
	"github.com/octavebahoun/docscrap/internal/logger"
)

const (
	httpTimeout = 30 * time.Second

	// lastFetchFile is the debug cache of the most recently fetched page.
	// Advisory only: it is overwritten on every fetch and never read back
	// by the pipeline.
	lastFetchFile = "last-fetch.html"
)

// Candidate browser binaries, probed in order. Mirrors the lookup the
// chromedp exec allocator performs.
var browserBinaries = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

// PageFetcher fetches rendered page HTML with a raw-HTTP fallback.
type PageFetcher struct {
	navigationTimeout time.Duration
	settleDelay       time.Duration
	userAgent         string
	browserPath       string // empty when no browser runtime is available
	cacheDir          string // empty disables the debug cache
	client            *http.Client
	log               logger.Logger
}

// New builds a PageFetcher from the pipeline configuration. Browser
// availability is probed once at construction; if no binary is found every
// fetch uses the HTTP fallback.
func New(cfg config.PipelineConfig, storage config.StorageConfig, log logger.Logger) *PageFetcher {
	f := &PageFetcher{
		navigationTimeout: cfg.NavigationTimeout,
		settleDelay:       cfg.SettleDelay,
		userAgent:         cfg.UserAgent,
		client:            &http.Client{Timeout: httpTimeout},
		log:               log,
	}

	if storage.DataDir != "" {
		f.cacheDir = filepath.Join(storage.DataDir, "raw")
	}

	if cfg.BrowserEnabled {
		f.browserPath = findBrowser()
		if f.browserPath == "" {
			log.Warn("no headless browser runtime found, falling back to raw HTTP fetch")
		}
	}

	return f
}

func findBrowser() string {
	for _, name := range browserBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// Fetch retrieves the HTML document behind url. Network failures,
// non-success HTTP statuses, and render timeouts surface as fetch errors.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := validateURL(pageURL); err != nil {
		return "", err
	}

	var (
		html string
		err  error
	)
	if f.browserPath != "" {
		html, err = f.fetchRendered(ctx, pageURL)
	} else {
		html, err = f.fetchDirect(ctx, pageURL)
	}
	if err != nil {
		return "", err
	}

	f.writeDebugCache(html)
	return html, nil
}

func validateURL(pageURL string) error {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return apperrors.Wrapf(apperrors.KindValidation, err, "invalid url %q", pageURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperrors.New(apperrors.KindValidation, fmt.Sprintf("unsupported url scheme %q", parsed.Scheme))
	}
	if parsed.Host == "" {
		return apperrors.New(apperrors.KindValidation, fmt.Sprintf("url %q has no host", pageURL))
	}
	return nil
}

// fetchRendered drives a headless Chrome instance. Navigation waits for
// the page load event rather than network idle, since modern pages keep
// background connections open indefinitely; a fixed settle delay then
// gives client-side frameworks time to hydrate before capture.
func (f *PageFetcher) fetchRendered(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(f.browserPath),
		chromedp.UserAgent(f.userAgent),
	)

	// Cancel funcs tear the browser process down on every exit path.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// The deadline covers navigation plus the settle delay.
	runCtx, cancelRun := context.WithTimeout(browserCtx, f.navigationTimeout+f.settleDelay)
	defer cancelRun()

	f.log.Debug("fetching page with headless browser",
		logger.String("url", pageURL),
		logger.Duration("settle_delay", f.settleDelay),
	)

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(f.settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.KindFetch, err, "render %s", pageURL)
	}

	return html, nil
}

// fetchDirect performs a plain GET and returns the body verbatim.
func (f *PageFetcher) fetchDirect(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.KindFetch, err, "create request for %s", pageURL)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.KindFetch, err, "fetch %s", pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", apperrors.New(apperrors.KindFetch,
			fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, pageURL))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.KindFetch, err, "read body of %s", pageURL)
	}

	return string(body), nil
}

// writeDebugCache persists the most recent fetch for inspection. Failures
// are logged and ignored: the cache is not part of the fetch contract.
func (f *PageFetcher) writeDebugCache(html string) {
	if f.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(f.cacheDir, 0o750); err != nil {
		f.log.Warn("create fetch cache dir", logger.Error(err))
		return
	}
	path := filepath.Join(f.cacheDir, lastFetchFile)
	if err := os.WriteFile(path, []byte(html), 0o600); err != nil {
		f.log.Warn("write fetch cache", logger.String("path", path), logger.Error(err))
	}
}
