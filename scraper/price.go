package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var priceRe = regexp.MustCompile(`£([\d,]+)`)

// ResolvePrice finds a pound-prefixed, comma-grouped amount in text and
// returns it in whole pounds. Text without such a run ("POA", "Price on
// application") resolves to absent, never zero.
func ResolvePrice(text string) (int, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}
