package scraper

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"propwatch/models"
)

// FetchDetail fetches and parses one property detail page.
type FetchDetail func(ctx context.Context, pageURL string) (*goquery.Document, error)

var (
	areaRe   = regexp.MustCompile(`(?i)([\d,]+)\s*sq\.?\s*ft`)
	tenureRe = regexp.MustCompile(`(?i)\b(leasehold|freehold)\b`)
)

// EnrichRecord fetches the record's detail page and fills in area and tenure.
// Enrichment is best-effort: a fetch failure returns the record unchanged,
// and fields already populated from the listing card are never overwritten.
func EnrichRecord(ctx context.Context, rec models.PropertyRecord, fetchDetail FetchDetail) models.PropertyRecord {
	if rec.ListingURL == "" {
		return rec
	}
	if rec.AreaSqFt != nil && rec.Leasehold != nil {
		return rec
	}

	doc, err := fetchDetail(ctx, rec.ListingURL)
	if err != nil {
		log.Printf("Failed to fetch details for property %s: %v", rec.PropertyID, err)
		return rec
	}

	if rec.AreaSqFt == nil {
		if area, ok := extractArea(doc); ok {
			rec.AreaSqFt = &area
		}
	}

	if rec.Leasehold == nil {
		if leasehold, ok := extractTenure(doc); ok {
			rec.Leasehold = &leasehold
		}
	}

	return rec
}

func extractArea(doc *goquery.Document) (int, bool) {
	text := doc.Find(`span[data-testid="info-reel-SIZE-text"]`).First().Text()
	m := areaRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func extractTenure(doc *goquery.Document) (bool, bool) {
	var leasehold, found bool
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		m := tenureRe.FindString(p.Text())
		if m == "" {
			return true
		}
		leasehold = strings.EqualFold(m, "leasehold")
		found = true
		return false
	})
	return leasehold, found
}
