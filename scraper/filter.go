package scraper

import (
	"time"

	"propwatch/models"
)

// FilterRecent drops records older than maxAgeDays. A nil threshold means no
// filtering. Records whose listing age cannot be determined are kept; the
// trade-off is possible staleness in the output rather than silently losing
// fresh listings with odd date labels. Order is preserved.
func FilterRecent(records []models.PropertyRecord, maxAgeDays *float64) []models.PropertyRecord {
	if maxAgeDays == nil {
		return records
	}
	return filterRecentAt(records, *maxAgeDays, time.Now())
}

func filterRecentAt(records []models.PropertyRecord, maxAgeDays float64, now time.Time) []models.PropertyRecord {
	filtered := make([]models.PropertyRecord, 0, len(records))
	for _, rec := range records {
		if rec.DateListed == nil {
			filtered = append(filtered, rec)
			continue
		}

		age, ok := ResolveAgeAt(*rec.DateListed, now)
		if !ok || age <= maxAgeDays {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
