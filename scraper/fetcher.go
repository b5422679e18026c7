package scraper

import (
	"context"
	"net/url"

	"propwatch/config"
	"propwatch/httputil"
)

// Fetcher retrieves one raw document from the portal. params may be nil for
// detail pages whose URL already carries everything.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string, params url.Values) (string, error)
}

// NewFetchers picks the fetcher implementation from config and returns one
// fetcher for results pages and one for detail pages. Plain HTTP is the
// default, with the detail fetcher on the longer-timeout client; the browser
// fetcher exists for when the portal starts gating plain requests and is
// shared between both roles so it keeps a single profile.
func NewFetchers(cfg *config.Config, clients *httputil.Clients) (page, detail Fetcher) {
	switch cfg.Scraper.Fetcher {
	case "browser":
		bf := NewBrowserFetcher()
		return bf, bf
	default:
		return NewHTTPFetcher(clients.Scraping), NewHTTPFetcher(clients.Detail)
	}
}
