package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOCATIONS_FILE", filepath.Join(dir, "locations.yaml"))
	t.Setenv("SEARCHES_DIR", filepath.Join(dir, "searches"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Scraper.Fetcher != "http" {
		t.Fatalf("expected http fetcher default, got %q", cfg.Scraper.Fetcher)
	}
	if cfg.Scraper.DelayMS != 2000 {
		t.Fatalf("expected 2000ms delay default, got %d", cfg.Scraper.DelayMS)
	}
	if cfg.Scraper.DetailDelayMS != 4000 {
		t.Fatalf("expected 4000ms detail delay default, got %d", cfg.Scraper.DetailDelayMS)
	}
	if cfg.OutputCSV != "properties.csv" {
		t.Fatalf("unexpected output default %q", cfg.OutputCSV)
	}
	if len(cfg.Searches) != 0 {
		t.Fatalf("expected no searches, got %d", len(cfg.Searches))
	}
}

func TestLoad_SearchesAndLocations(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "locations.yaml"),
		"Leytonstone: REGION^87523\nLewisham: REGION^61413\n")
	writeFile(t, filepath.Join(dir, "searches", "leytonstone.yaml"), `
id: leytonstone_2bed
name: Leytonstone 2-bed
location: Leytonstone
min_bedrooms: 2
max_bedrooms: 2
max_pages: 3
max_age_days: 1.0
fetch_details: true
`)
	writeFile(t, filepath.Join(dir, "searches", "notes.txt"), "ignored")

	t.Setenv("LOCATIONS_FILE", filepath.Join(dir, "locations.yaml"))
	t.Setenv("SEARCHES_DIR", filepath.Join(dir, "searches"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Locations["Leytonstone"] != "REGION^87523" {
		t.Fatalf("unexpected location code %q", cfg.Locations["Leytonstone"])
	}

	search, ok := cfg.Searches["leytonstone_2bed"]
	if !ok {
		t.Fatalf("expected search leytonstone_2bed, got %v", cfg.Searches)
	}
	if search.MinBedrooms != 2 || search.MaxBedrooms != 2 {
		t.Fatalf("unexpected bedroom range %d-%d", search.MinBedrooms, search.MaxBedrooms)
	}
	if search.MaxAgeDays == nil || *search.MaxAgeDays != 1.0 {
		t.Fatalf("unexpected max age %v", search.MaxAgeDays)
	}
	if !search.FetchDetails {
		t.Fatal("expected fetch_details true")
	}
}

func TestLoad_SearchWithoutID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "searches", "bad.yaml"), "name: No ID\nlocation: Leytonstone\n")

	t.Setenv("LOCATIONS_FILE", filepath.Join(dir, "locations.yaml"))
	t.Setenv("SEARCHES_DIR", filepath.Join(dir, "searches"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for search config without id")
	}
}
