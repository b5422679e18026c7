package scraper

import (
	"context"
	"log"
	"time"

	"github.com/PuerkitoBio/goquery"
	"propwatch/models"
)

// FetchPage fetches and parses one results page by zero-based index.
type FetchPage func(ctx context.Context, page int) (*goquery.Document, error)

// Paginate walks result pages sequentially up to maxPages, accumulating
// records. It stops early on the first page that yields zero cards (the
// portal exposes no total-result count, so an empty page is the only
// termination signal) and on the first fetch error, returning whatever was
// accumulated. delay is the caller's rate-limit policy applied between
// consecutive fetches; pages are never fetched concurrently. Cancellation
// is checked before every fetch.
func Paginate(ctx context.Context, fetchPage FetchPage, maxPages int, delay time.Duration, baseURL string) []models.PropertyRecord {
	var all []models.PropertyRecord

	for page := 0; page < maxPages; page++ {
		if page > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return all
			case <-time.After(delay):
			}
		}
		if ctx.Err() != nil {
			return all
		}

		doc, err := fetchPage(ctx, page)
		if err != nil {
			log.Printf("Failed to fetch page %d: %v", page+1, err)
			return all
		}

		records := ExtractPage(doc, baseURL)
		if len(records) == 0 {
			log.Printf("No listings on page %d, stopping", page+1)
			return all
		}

		all = append(all, records...)
		log.Printf("Page %d: %d listings (total: %d)", page+1, len(records), len(all))
	}

	return all
}
