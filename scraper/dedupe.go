package scraper

import "propwatch/models"

// Merge folds incoming records into the existing set, keyed by property id.
// The last occurrence of each id wins, so a re-observed listing replaces its
// older snapshot while keeping its original position. Records without an id
// are all retained independently; they can never be merged. Output order is
// deterministic for a given input.
func Merge(existing, incoming []models.PropertyRecord) []models.PropertyRecord {
	merged := make([]models.PropertyRecord, 0, len(existing)+len(incoming))
	byID := make(map[string]int)

	add := func(rec models.PropertyRecord) {
		if rec.PropertyID == "" {
			merged = append(merged, rec)
			return
		}
		if idx, ok := byID[rec.PropertyID]; ok {
			merged[idx] = rec
			return
		}
		byID[rec.PropertyID] = len(merged)
		merged = append(merged, rec)
	}

	for _, rec := range existing {
		add(rec)
	}
	for _, rec := range incoming {
		add(rec)
	}

	return merged
}
