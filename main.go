package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propwatch/config"
	"propwatch/httputil"
	"propwatch/logging"
	"propwatch/scheduler"
	"propwatch/scraper"
	"propwatch/services"
	"propwatch/storage"
)

var (
	scrapeNow = flag.Bool("scrape", false, "Run all searches once and exit")
	searchID  = flag.String("search", "", "Run a single search once and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("daemon.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting propwatch...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Loaded %d search configs", len(cfg.Searches))
	for id, search := range cfg.Searches {
		log.Printf("  - %s (%s)", search.Name, id)
	}

	ctx := context.Background()

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer store.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	var sink storage.Sink
	if cfg.DatabaseURL != "" {
		pgSink, err := storage.NewPostgresSink(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pgSink.Close()
		sink = pgSink
		log.Println("Record sink: Postgres")
	} else {
		sink = storage.NewCSVSink(cfg.OutputCSV)
		log.Printf("Record sink: %s", cfg.OutputCSV)
	}

	clients := httputil.NewClients(time.Duration(cfg.Scraper.TimeoutSec) * time.Second)
	pageFetcher, detailFetcher := scraper.NewFetchers(cfg, clients)
	if bf, ok := pageFetcher.(*scraper.BrowserFetcher); ok {
		defer bf.Close()
	}

	insights := services.NewInsightService(cfg.TrendCSV)
	orchestrator := scraper.NewOrchestrator(cfg, store, sink, pageFetcher, detailFetcher, insights)

	if *searchID != "" {
		log.Printf("Running search %s...", *searchID)
		if err := orchestrator.RunSearch(ctx, *searchID); err != nil {
			log.Fatalf("Scrape failed: %v", err)
		}
		log.Println("Scrape complete!")
		return
	}

	if *scrapeNow {
		log.Println("Running scrape...")
		if err := orchestrator.RunAll(ctx); err != nil {
			log.Fatalf("Scrape failed: %v", err)
		}
		log.Println("Scrape complete!")
		return
	}

	sched := scheduler.New(cfg, orchestrator, store)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	cancel()
	sched.Stop()
	log.Println("Goodbye!")
}
