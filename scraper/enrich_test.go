package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"propwatch/models"
)

func detailFetcher(t *testing.T, calls *int) FetchDetail {
	t.Helper()
	return func(_ context.Context, _ string) (*goquery.Document, error) {
		*calls++
		return goquery.NewDocumentFromReader(strings.NewReader(string(loadFixture(t, "detail_page.html"))))
	}
}

func TestEnrichRecord_FillsAreaAndTenure(t *testing.T) {
	rec := models.PropertyRecord{
		PropertyID: "164230202",
		ListingURL: "https://www.rightmove.co.uk/properties/164230202#/",
	}

	calls := 0
	got := EnrichRecord(context.Background(), rec, detailFetcher(t, &calls))

	if calls != 1 {
		t.Fatalf("expected 1 detail fetch, got %d", calls)
	}
	if got.AreaSqFt == nil || *got.AreaSqFt != 1023 {
		t.Fatalf("unexpected area %v", got.AreaSqFt)
	}
	if got.Leasehold == nil || !*got.Leasehold {
		t.Fatalf("unexpected tenure %v", got.Leasehold)
	}
}

func TestEnrichRecord_NeverOverwrites(t *testing.T) {
	rec := models.PropertyRecord{
		PropertyID: "164230202",
		ListingURL: "https://www.rightmove.co.uk/properties/164230202#/",
		AreaSqFt:   intPtr(900),
	}

	calls := 0
	got := EnrichRecord(context.Background(), rec, detailFetcher(t, &calls))

	if got.AreaSqFt == nil || *got.AreaSqFt != 900 {
		t.Fatalf("card-sourced area must not be overwritten, got %v", got.AreaSqFt)
	}
	if got.Leasehold == nil || !*got.Leasehold {
		t.Fatalf("missing tenure should still be filled, got %v", got.Leasehold)
	}
}

func TestEnrichRecord_SkipsWhenComplete(t *testing.T) {
	rec := models.PropertyRecord{
		PropertyID: "164230202",
		ListingURL: "https://www.rightmove.co.uk/properties/164230202#/",
		AreaSqFt:   intPtr(900),
		Leasehold:  boolPtr(false),
	}

	calls := 0
	got := EnrichRecord(context.Background(), rec, detailFetcher(t, &calls))

	if calls != 0 {
		t.Fatalf("expected no detail fetch for a complete record, got %d", calls)
	}
	if *got.AreaSqFt != 900 || *got.Leasehold != false {
		t.Fatal("complete record should come back unchanged")
	}
}

func TestEnrichRecord_FetchFailureLeavesRecordUnchanged(t *testing.T) {
	rec := models.PropertyRecord{
		PropertyID: "164230202",
		ListingURL: "https://www.rightmove.co.uk/properties/164230202#/",
		Price:      intPtr(450000),
	}

	fetchDetail := func(_ context.Context, _ string) (*goquery.Document, error) {
		return nil, errors.New("timeout")
	}

	got := EnrichRecord(context.Background(), rec, fetchDetail)

	if got.AreaSqFt != nil || got.Leasehold != nil {
		t.Fatal("failed enrichment must not invent fields")
	}
	if got.Price == nil || *got.Price != 450000 {
		t.Fatalf("existing fields must survive a failed enrichment, got %v", got.Price)
	}
}
