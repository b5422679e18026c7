package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Scheduler   SchedulerConfig
	Scraper     ScraperConfig
	DBPath      string
	DatabaseURL string
	OutputCSV   string
	TrendCSV    string
	LogLevel    string
	Locations   map[string]string
	Searches    map[string]*SearchConfig
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type ScraperConfig struct {
	Fetcher       string
	DelayMS       int
	DetailDelayMS int
	TimeoutSec    int
}

// SearchConfig describes one saved portal search, loaded from
// config/searches/*.yaml. Location must resolve through the locations map.
type SearchConfig struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Location     string   `yaml:"location"`
	MinBedrooms  int      `yaml:"min_bedrooms"`
	MaxBedrooms  int      `yaml:"max_bedrooms"`
	MaxPages     int      `yaml:"max_pages"`
	MaxAgeDays   *float64 `yaml:"max_age_days"`
	FetchDetails bool     `yaml:"fetch_details"`
	Output       string   `yaml:"output"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SCRAPE_CRON"),
		},
		Scraper: ScraperConfig{
			Fetcher:       getEnv("SCRAPE_FETCHER", "http"),
			DelayMS:       getEnvInt("SCRAPE_DELAY_MS", 2000),
			DetailDelayMS: getEnvInt("DETAIL_DELAY_MS", 4000),
			TimeoutSec:    getEnvInt("SCRAPE_TIMEOUT_SEC", 30),
		},
		DBPath:      getEnv("DB_PATH", "propwatch.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		OutputCSV:   getEnv("OUTPUT_CSV", "properties.csv"),
		TrendCSV:    getEnv("TREND_CSV", "uk_daily_house_prices.csv"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Locations:   make(map[string]string),
		Searches:    make(map[string]*SearchConfig),
	}

	if interval := os.Getenv("SCRAPE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadLocations(); err != nil {
		return nil, err
	}
	if err := cfg.loadSearchConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadLocations reads the immutable location-name -> region-code map. The
// portal only accepts its own opaque region identifiers, so every search
// references a location by name and resolves the code here at startup.
func (c *Config) loadLocations() error {
	path := getEnv("LOCATIONS_FILE", "config/locations.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(data, &c.Locations); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadSearchConfigs() error {
	configDir := getEnv("SEARCHES_DIR", "config/searches")
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var search SearchConfig
		if err := yaml.Unmarshal(data, &search); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if search.ID == "" {
			return fmt.Errorf("%s: search config has no id", path)
		}

		c.Searches[search.ID] = &search
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
