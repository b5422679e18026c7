package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"propwatch/models"
)

var (
	propertyIDRe = regexp.MustCompile(`/properties/(\d+)`)
	phoneRe      = regexp.MustCompile(`\d[\d\s]+\d`)
)

// ExtractCard pulls a PropertyRecord out of one listing card. The detail
// link is the only required field: without it the card is unextractable and
// nil is returned. Every other field degrades to absent on its own when the
// element is missing or its text does not parse, so one mangled field never
// loses the rest of the card.
func ExtractCard(card *goquery.Selection, baseURL string) *models.PropertyRecord {
	link := card.Find(`a[data-test="property-details"]`).First()
	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil
	}

	rec := &models.PropertyRecord{
		ListingURL: absoluteURL(baseURL, strings.TrimSpace(href)),
	}
	if m := propertyIDRe.FindStringSubmatch(href); m != nil {
		rec.PropertyID = m[1]
	}

	if addr := elementText(card, `address[class*="PropertyAddress_address"]`); addr != "" {
		rec.Address = &addr
	}

	// Price: card price div first, then the price-labelled region as an
	// alternate markup location.
	if price, ok := ResolvePrice(elementText(card, `div[class*="PropertyPrice_price"]`)); ok {
		rec.Price = &price
	} else if price, ok := ResolvePrice(elementText(card, `[data-testid="property-price"]`)); ok {
		rec.Price = &price
	}

	if n, ok := elementInt(card, `span[class*="bedroomsCount"]`); ok {
		rec.Bedrooms = &n
	}

	bathSpan := card.Find(`div[class*="bathContainer"]`).Find(`span[aria-label*="in property"]`)
	if n, ok := parseIntText(bathSpan.First().Text()); ok {
		rec.Bathrooms = &n
	}

	if t := elementText(card, `span[class*="propertyType"]`); t != "" {
		rec.PropertyType = &t
	}

	if title, ok := card.Find(`a[data-testid*="branch-logo"]`).First().Attr("title"); ok {
		if agent := strings.TrimSpace(title); agent != "" {
			rec.Agent = &agent
		}
	}

	if phoneText := elementText(card, `a[class*="phoneLinkDesktop"]`); phoneText != "" {
		contact := phoneText
		if m := phoneRe.FindString(phoneText); m != "" {
			contact = strings.TrimSpace(m)
		} else if line, _, found := strings.Cut(phoneText, "\n"); found {
			contact = strings.TrimSpace(line)
		}
		rec.AgentContact = &contact
	}

	if date := elementText(card, `span[class*="addedOrReduced"]`); date != "" {
		rec.DateListed = &date
	}

	if desc := elementText(card, `p[data-testid="property-description"]`); desc != "" {
		rec.Description = &desc
	}

	return rec
}

func elementText(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}

func elementInt(sel *goquery.Selection, selector string) (int, bool) {
	return parseIntText(sel.Find(selector).First().Text())
}

// parseIntText parses whitespace-normalized element text as a non-negative
// integer; anything else is absent rather than an error.
func parseIntText(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func absoluteURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimSuffix(baseURL, "/") + href
}
