package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var listedDateRe = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)

// ResolveAge parses the portal's free-text "Added today" / "Reduced on
// 15/01/2026" labels into an age in days. Unparseable input resolves to
// absent; callers treat absent as recent so listings with unknown freshness
// are never silently dropped.
func ResolveAge(raw string) (float64, bool) {
	return ResolveAgeAt(raw, time.Now())
}

func ResolveAgeAt(raw string, now time.Time) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	if strings.Contains(s, "today") {
		return 0.0, true
	}
	if strings.Contains(s, "yesterday") {
		return 1.0, true
	}

	m := listedDateRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	listed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	// time.Date normalizes day 32 into the next month; reject anything that
	// moved instead of erroring.
	if listed.Day() != day || listed.Month() != time.Month(month) || listed.Year() != year {
		return 0, false
	}

	days := math.Floor(now.Sub(listed).Hours() / 24)
	return days, true
}
