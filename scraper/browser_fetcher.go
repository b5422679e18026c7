package scraper

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// BrowserFetcher renders pages in a real Chromium instance. It exists for
// when the portal refuses plain HTTP; the persistent profile keeps whatever
// cookies the anti-bot layer hands out between runs.
type BrowserFetcher struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	browserCtx  playwright.BrowserContext
	initialized bool
}

func NewBrowserFetcher() *BrowserFetcher {
	return &BrowserFetcher{}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string, params url.Values) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := f.ensureBrowser(); err != nil {
		return "", err
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if params != nil {
		q := u.Query()
		for key, vals := range params {
			for _, v := range vals {
				q.Set(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	page, err := f.browserCtx.NewPage()
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	_, err = page.Goto(u.String(), playwright.PageGotoOptions{
		Timeout:   playwright.Float(60000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}

	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}

	return content, nil
}

func (f *BrowserFetcher) ensureBrowser() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized {
		return nil
	}

	var err error
	f.pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	cwd, _ := os.Getwd()
	userDataDir := filepath.Join(cwd, "browser_data")
	f.browserCtx, err = f.pw.Chromium.LaunchPersistentContext(userDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	f.initialized = true
	return nil
}

func (f *BrowserFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browserCtx != nil {
		f.browserCtx.Close()
	}
	if f.pw != nil {
		f.pw.Stop()
	}
	f.initialized = false
}
