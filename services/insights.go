package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"propwatch/models"
)

// PriceSummary is the aggregate of the asking prices in one scrape result.
// Records without a price are excluded from the sample.
type PriceSummary struct {
	Count   int
	Average int
	Min     int
	Max     int
}

// InsightService appends one price summary per run to a long-lived trend CSV,
// building a daily price series per search over time.
type InsightService struct {
	mu   sync.Mutex
	path string
}

func NewInsightService(path string) *InsightService {
	return &InsightService{path: path}
}

func Summarize(records []models.PropertyRecord) PriceSummary {
	var sum PriceSummary
	total := 0
	for _, rec := range records {
		if rec.Price == nil {
			continue
		}
		p := *rec.Price
		if sum.Count == 0 {
			sum.Min = p
			sum.Max = p
		} else {
			if p < sum.Min {
				sum.Min = p
			}
			if p > sum.Max {
				sum.Max = p
			}
		}
		total += p
		sum.Count++
	}
	if sum.Count > 0 {
		sum.Average = total / sum.Count
	}
	return sum
}

var trendColumns = []string{
	"Location", "Rooms", "Timestamp(unix)", "Timestamp(UTC)",
	"Average_Price", "Sample_Size", "Source",
}

// Append writes one trend row. A zero-sample summary is skipped so the series
// only contains days the search actually returned priced listings.
func (s *InsightService) Append(location, rooms string, sum PriceSummary) error {
	if sum.Count == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writeHeader := false
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		writeHeader = true
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(trendColumns); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	row := []string{
		location,
		rooms,
		strconv.FormatInt(now.Unix(), 10),
		now.Format(time.RFC3339),
		strconv.Itoa(sum.Average),
		strconv.Itoa(sum.Count),
		"rightmove",
	}
	if err := w.Write(row); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
