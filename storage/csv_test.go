package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"propwatch/models"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

func TestCSVSink_LoadMissingFile(t *testing.T) {
	sink := NewCSVSink(filepath.Join(t.TempDir(), "nope.csv"))

	records, err := sink.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty set, got %d records", len(records))
	}
}

func TestCSVSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "properties.csv")
	sink := NewCSVSink(path)
	ctx := context.Background()

	records := []models.PropertyRecord{
		{
			PropertyID:   "164230202",
			ListingURL:   "https://www.rightmove.co.uk/properties/164230202#/",
			Address:      strPtr("Fairlop Road, Leytonstone, London, E11"),
			Description:  strPtr("A bright two bedroom flat"),
			Bedrooms:     intPtr(2),
			Bathrooms:    intPtr(1),
			PropertyType: strPtr("Flat"),
			AreaSqFt:     intPtr(1023),
			Leasehold:    boolPtr(true),
			Price:        intPtr(450000),
			Agent:        strPtr("Estates East, Walthamstow"),
			AgentContact: strPtr("020 8127 4994"),
			DateListed:   strPtr("Added on 05/01/2026"),
		},
		{
			PropertyID: "164230300",
			ListingURL: "https://www.rightmove.co.uk/properties/164230300#/",
			Leasehold:  boolPtr(false),
		},
	}

	if err := sink.Save(ctx, records); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := sink.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	first := got[0]
	if first.PropertyID != "164230202" {
		t.Fatalf("unexpected property id %q", first.PropertyID)
	}
	if first.Price == nil || *first.Price != 450000 {
		t.Fatalf("unexpected price %v", first.Price)
	}
	if first.Leasehold == nil || !*first.Leasehold {
		t.Fatalf("unexpected tenure %v", first.Leasehold)
	}
	if first.AreaSqFt == nil || *first.AreaSqFt != 1023 {
		t.Fatalf("unexpected area %v", first.AreaSqFt)
	}
	if first.AgentContact == nil || *first.AgentContact != "020 8127 4994" {
		t.Fatalf("unexpected contact %v", first.AgentContact)
	}

	second := got[1]
	if second.Price != nil || second.Bedrooms != nil || second.Address != nil {
		t.Fatal("absent fields must stay absent through a round trip")
	}
	if second.Leasehold == nil || *second.Leasehold {
		t.Fatalf("false tenure must stay distinguishable from absent, got %v", second.Leasehold)
	}
}

func TestCSVSink_LoadReorderedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "properties.csv")
	csv := "price,property_id,listing_url\n" +
		"325000,99887766,https://www.rightmove.co.uk/properties/99887766#/\n"
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	sink := NewCSVSink(path)
	records, err := sink.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].PropertyID != "99887766" {
		t.Fatalf("unexpected property id %q", records[0].PropertyID)
	}
	if records[0].Price == nil || *records[0].Price != 325000 {
		t.Fatalf("unexpected price %v", records[0].Price)
	}
}

func TestCSVSink_SaveWritesHeaderFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "properties.csv")
	sink := NewCSVSink(path)

	if err := sink.Save(context.Background(), nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	if firstLine != strings.Join(csvColumns, ",") {
		t.Fatalf("unexpected header %q", firstLine)
	}
}
