package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"propwatch/config"
	"propwatch/models"
	"propwatch/services"
	"propwatch/storage"
)

const (
	portalBaseURL  = "https://www.rightmove.co.uk"
	searchPath     = "/property-for-sale/find.html"
	resultsPerPage = 24
)

type Orchestrator struct {
	cfg           *config.Config
	store         *storage.SQLiteStore
	sink          storage.Sink
	fetcher       Fetcher
	detailFetcher Fetcher
	insights      *services.InsightService
	paused        bool

	// Serializes the load-merge-save cycle so concurrent searches writing to
	// the same sink never lose each other's records.
	sinkMu sync.Mutex

	searchSinks map[string]storage.Sink
}

func NewOrchestrator(cfg *config.Config, store *storage.SQLiteStore, sink storage.Sink, fetcher, detailFetcher Fetcher, insights *services.InsightService) *Orchestrator {
	searchSinks := make(map[string]storage.Sink)
	for id, searchCfg := range cfg.Searches {
		if searchCfg.Output != "" {
			searchSinks[id] = storage.NewCSVSink(searchCfg.Output)
		}
	}

	return &Orchestrator{
		cfg:           cfg,
		store:         store,
		sink:          sink,
		fetcher:       fetcher,
		detailFetcher: detailFetcher,
		insights:      insights,
		searchSinks:   searchSinks,
	}
}

func (o *Orchestrator) RunAll(ctx context.Context) error {
	if o.paused {
		log.Println("Scraper is paused, skipping run")
		return nil
	}

	for searchID := range o.cfg.Searches {
		if err := o.RunSearch(ctx, searchID); err != nil {
			log.Printf("Error running search %s: %v", searchID, err)
		}
	}

	return nil
}

func (o *Orchestrator) RunSearch(ctx context.Context, searchID string) error {
	searchCfg, ok := o.cfg.Searches[searchID]
	if !ok {
		return fmt.Errorf("unknown search: %s", searchID)
	}

	// All config problems surface here, before the first request goes out.
	locationCode, ok := o.cfg.Locations[searchCfg.Location]
	if !ok {
		return fmt.Errorf("search %s: unknown location %q", searchID, searchCfg.Location)
	}
	if searchCfg.MaxPages <= 0 {
		return fmt.Errorf("search %s: max_pages must be positive", searchID)
	}
	if searchCfg.MaxAgeDays != nil && *searchCfg.MaxAgeDays < 0 {
		return fmt.Errorf("search %s: max_age_days must not be negative", searchID)
	}
	if searchCfg.MinBedrooms < 0 || (searchCfg.MaxBedrooms > 0 && searchCfg.MaxBedrooms < searchCfg.MinBedrooms) {
		return fmt.Errorf("search %s: invalid bedroom range %d-%d", searchID, searchCfg.MinBedrooms, searchCfg.MaxBedrooms)
	}

	run := &models.ScrapeRun{
		SearchID:  searchID,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}

	runID, err := o.store.CreateRun(run)
	if err != nil {
		return err
	}
	run.ID = runID

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		o.store.UpdateRun(run)
		o.store.UpdateSearchStats(searchID)
	}()

	o.log(run.ID, models.LogLevelInfo, fmt.Sprintf("Starting scrape for %s", searchCfg.Name), searchID)

	fetchPage := func(ctx context.Context, page int) (*goquery.Document, error) {
		params := url.Values{}
		params.Set("locationIdentifier", locationCode)
		params.Set("sortType", "6")
		if searchCfg.MinBedrooms > 0 {
			params.Set("minBedrooms", strconv.Itoa(searchCfg.MinBedrooms))
		}
		if searchCfg.MaxBedrooms > 0 {
			params.Set("maxBedrooms", strconv.Itoa(searchCfg.MaxBedrooms))
		}
		if page > 0 {
			params.Set("index", strconv.Itoa(page*resultsPerPage))
		}

		html, err := o.fetcher.Fetch(ctx, portalBaseURL+searchPath, params)
		if err != nil {
			return nil, err
		}
		run.PagesFetched++
		return goquery.NewDocumentFromReader(strings.NewReader(html))
	}

	delay := time.Duration(o.cfg.Scraper.DelayMS) * time.Millisecond
	records := Paginate(ctx, fetchPage, searchCfg.MaxPages, delay, portalBaseURL)
	run.ListingsFound = len(records)

	if searchCfg.FetchDetails {
		o.enrichAll(ctx, run, records, searchID)
	}

	records = FilterRecent(records, searchCfg.MaxAgeDays)
	run.ListingsKept = len(records)

	if len(records) == 0 {
		// An empty result is a legitimate outcome, not an error.
		run.Status = models.RunStatusCompleted
		o.log(run.ID, models.LogLevelInfo, "No properties found", searchID)
		return nil
	}

	sink := o.sinkFor(searchID)
	written, err := o.persist(ctx, sink, records)
	if err != nil {
		run.ErrorsCount++
		run.Status = models.RunStatusFailed
		o.log(run.ID, models.LogLevelError, fmt.Sprintf("Persist error: %v", err), searchID)
		return err
	}
	run.RecordsWritten = written

	if o.insights != nil {
		sum := services.Summarize(records)
		if err := o.insights.Append(searchCfg.Location, roomsLabel(searchCfg), sum); err != nil {
			o.log(run.ID, models.LogLevelWarn, fmt.Sprintf("Trend append error: %v", err), searchID)
		}
	}

	run.Status = models.RunStatusCompleted
	o.log(run.ID, models.LogLevelInfo,
		fmt.Sprintf("Completed: %d found, %d kept, %d in store", run.ListingsFound, run.ListingsKept, written), searchID)

	return nil
}

// enrichAll visits each record's detail page sequentially, with the same
// rate-limit treatment as result pages. Failures are already absorbed by
// EnrichRecord, so the loop only has to pace itself and honor cancellation.
func (o *Orchestrator) enrichAll(ctx context.Context, run *models.ScrapeRun, records []models.PropertyRecord, searchID string) {
	fetchDetail := func(ctx context.Context, pageURL string) (*goquery.Document, error) {
		html, err := o.detailFetcher.Fetch(ctx, pageURL, nil)
		if err != nil {
			return nil, err
		}
		return goquery.NewDocumentFromReader(strings.NewReader(html))
	}

	delay := time.Duration(o.cfg.Scraper.DetailDelayMS) * time.Millisecond

	for i := range records {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
		if ctx.Err() != nil {
			return
		}
		records[i] = EnrichRecord(ctx, records[i], fetchDetail)
	}

	o.log(run.ID, models.LogLevelInfo, fmt.Sprintf("Enriched %d listings", len(records)), searchID)
}

// persist merges the new records into the sink's existing set and writes the
// result back. Incoming data wins over stored data for the same property.
func (o *Orchestrator) persist(ctx context.Context, sink storage.Sink, records []models.PropertyRecord) (int, error) {
	o.sinkMu.Lock()
	defer o.sinkMu.Unlock()

	existing, err := sink.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load existing records: %w", err)
	}

	merged := Merge(existing, records)
	if err := sink.Save(ctx, merged); err != nil {
		return 0, fmt.Errorf("save records: %w", err)
	}

	return len(merged), nil
}

func (o *Orchestrator) sinkFor(searchID string) storage.Sink {
	if sink, ok := o.searchSinks[searchID]; ok {
		return sink
	}
	return o.sink
}

func roomsLabel(searchCfg *config.SearchConfig) string {
	switch {
	case searchCfg.MinBedrooms == 0 && searchCfg.MaxBedrooms == 0:
		return "any"
	case searchCfg.MaxBedrooms == 0:
		return fmt.Sprintf("%d+", searchCfg.MinBedrooms)
	case searchCfg.MinBedrooms == searchCfg.MaxBedrooms:
		return strconv.Itoa(searchCfg.MinBedrooms)
	default:
		return fmt.Sprintf("%d-%d", searchCfg.MinBedrooms, searchCfg.MaxBedrooms)
	}
}

func (o *Orchestrator) HandleCommand(cmd *models.Command) error {
	params, err := o.store.ParseCommandParams(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()

	switch cmd.Command {
	case models.CmdScrapeNow:
		return o.RunAll(ctx)
	case models.CmdScrapeSearch:
		if params.Search != "" {
			return o.RunSearch(ctx, params.Search)
		}
		return o.RunAll(ctx)
	case models.CmdPause:
		o.paused = true
		log.Println("Scraper paused")
	case models.CmdResume:
		o.paused = false
		log.Println("Scraper resumed")
	}

	return nil
}

func (o *Orchestrator) IsPaused() bool {
	return o.paused
}

func (o *Orchestrator) log(runID int64, level models.LogLevel, message, searchID string) {
	log.Printf("[%s] %s: %s", level, searchID, message)
	o.store.Log(&runID, level, message, searchID)
}

func (o *Orchestrator) GetSearchIDs() []string {
	var ids []string
	for id := range o.cfg.Searches {
		ids = append(ids, id)
	}
	return ids
}

func (o *Orchestrator) MarshalStatus() ([]byte, error) {
	status := map[string]interface{}{
		"paused":   o.paused,
		"searches": o.GetSearchIDs(),
	}
	return json.Marshal(status)
}
