package flipp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"flyer-deals/utils"
)

// BrowserTransport loads API URLs in headless Chrome and returns the page
// text. Chrome renders a JSON response as plain text, so the body comes back
// unchanged. One browser is started lazily and reused for every request.
type BrowserTransport struct {
	chromeBin string
	timeout   time.Duration
	logger    *utils.Logger

	browserCtx context.Context
	cancels    []context.CancelFunc
}

// NewBrowserTransport creates a BrowserTransport. An empty chromeBin means
// "look for a Chrome or Chromium install".
func NewBrowserTransport(chromeBin string, timeout time.Duration, logger *utils.Logger) *BrowserTransport {
	return &BrowserTransport{chromeBin: chromeBin, timeout: timeout, logger: logger}
}

func (b *BrowserTransport) start() (context.Context, error) {
	if b.browserCtx != nil {
		return b.browserCtx, nil
	}

	chromeBin := b.chromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	b.logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	b.cancels = append(b.cancels, cancelBrowser, cancelAlloc)

	// Launch now so tabs share this browser instead of each starting one.
	if err := chromedp.Run(browserCtx); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("chromedp start: %w", err)
	}

	b.browserCtx = browserCtx
	return browserCtx, nil
}

// Get implements Transport. The browser has its own lifetime, so ctx only
// bounds how long the caller waits.
func (b *BrowserTransport) Get(ctx context.Context, url string) ([]byte, error) {
	browserCtx, err := b.start()
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var text string
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp fetch %s: %w", url, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("chromedp fetch %s: empty page", url)
	}
	return []byte(text), nil
}

// Close shuts the browser down.
func (b *BrowserTransport) Close() error {
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
	b.browserCtx = nil
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
