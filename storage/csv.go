package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"propwatch/models"
)

var csvColumns = []string{
	"property_id", "address", "description", "bedrooms", "bathrooms",
	"property_type", "area_sqft", "leasehold", "price", "agent",
	"agent_contact", "date_listed", "listing_url",
}

// CSVSink persists records as a flat CSV file. Saves go through a temp file
// and rename so a failed write never corrupts the previous data.
type CSVSink struct {
	mu   sync.Mutex
	path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Load(_ context.Context) ([]models.PropertyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Column lookup by header name, so reordered columns still load.
	colIdx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		colIdx[name] = i
	}

	records := make([]models.PropertyRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		field := func(name string) string {
			idx, ok := colIdx[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		rec := models.PropertyRecord{
			PropertyID:   field("property_id"),
			ListingURL:   field("listing_url"),
			Address:      optString(field("address")),
			Description:  optString(field("description")),
			Bedrooms:     optInt(field("bedrooms")),
			Bathrooms:    optInt(field("bathrooms")),
			PropertyType: optString(field("property_type")),
			AreaSqFt:     optInt(field("area_sqft")),
			Leasehold:    optBool(field("leasehold")),
			Price:        optInt(field("price")),
			Agent:        optString(field("agent")),
			AgentContact: optString(field("agent_contact")),
			DateListed:   optString(field("date_listed")),
		}
		records = append(records, rec)
	}

	return records, nil
}

func (s *CSVSink) Save(_ context.Context, records []models.PropertyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.PropertyID,
			fromOptString(rec.Address),
			fromOptString(rec.Description),
			fromOptInt(rec.Bedrooms),
			fromOptInt(rec.Bathrooms),
			fromOptString(rec.PropertyType),
			fromOptInt(rec.AreaSqFt),
			fromOptBool(rec.Leasehold),
			fromOptInt(rec.Price),
			fromOptString(rec.Agent),
			fromOptString(rec.AgentContact),
			fromOptString(rec.DateListed),
			rec.ListingURL,
		}
		if err := w.Write(row); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.path)
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optInt(v string) *int {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func optBool(v string) *bool {
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func fromOptString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func fromOptInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func fromOptBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
