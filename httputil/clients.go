package httputil

import (
	"net/http"
	"time"
)

// Clients bundles the HTTP clients used against the portal. Listing-page and
// detail-page fetches share cookies via the default jarless client; the
// separation exists so detail fetches can carry a longer timeout.
type Clients struct {
	Scraping *http.Client
	Detail   *http.Client
}

func NewClients(timeout time.Duration) *Clients {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Clients{
		Scraping: &http.Client{Timeout: timeout},
		Detail:   &http.Client{Timeout: timeout + 15*time.Second},
	}
}
