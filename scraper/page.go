package scraper

import (
	"log"

	"github.com/PuerkitoBio/goquery"
	"propwatch/models"
)

// cardStrategy locates listing cards in a results document. Strategies are
// tried in order until one finds at least one card, so a portal markup
// change degrades to the next strategy instead of silently yielding nothing.
// Adding a strategy is a one-line insertion.
type cardStrategy struct {
	name string
	find func(doc *goquery.Document) *goquery.Selection
}

var cardStrategies = []cardStrategy{
	{"card-class", func(doc *goquery.Document) *goquery.Selection {
		return doc.Find(`div[class*="PropertyCard_propertyCardContainerWrapper"]`)
	}},
	{"card-testid", func(doc *goquery.Document) *goquery.Selection {
		return doc.Find(`div[data-testid="propertyCard"]`)
	}},
	// Last resort: walk up from the detail anchors themselves. The enclosing
	// div may be a narrow wrapper, so some optional fields can come back
	// absent, but the link and identifier survive.
	{"details-anchor", func(doc *goquery.Document) *goquery.Selection {
		return doc.Find(`a[data-test="property-details"]`).Closest("div")
	}},
}

// ExtractPage yields all records found on one search results page. An empty
// result is a meaningful signal to the pagination driver, not an error.
func ExtractPage(doc *goquery.Document, baseURL string) []models.PropertyRecord {
	cards := findCards(doc)
	if cards == nil {
		return nil
	}

	var records []models.PropertyRecord
	cards.Each(func(_ int, card *goquery.Selection) {
		if rec := ExtractCard(card, baseURL); rec != nil {
			records = append(records, *rec)
		}
	})
	return records
}

func findCards(doc *goquery.Document) *goquery.Selection {
	for i, strategy := range cardStrategies {
		cards := strategy.find(doc)
		if cards.Length() > 0 {
			if i > 0 {
				log.Printf("Primary card selector empty, using %q strategy (%d cards)", strategy.name, cards.Length())
			}
			return cards
		}
	}
	return nil
}
