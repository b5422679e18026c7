package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type ScrapeRun struct {
	ID             int64      `json:"id" db:"id"`
	SearchID       string     `json:"search_id" db:"search_id"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at" db:"finished_at"`
	Status         RunStatus  `json:"status" db:"status"`
	PagesFetched   int        `json:"pages_fetched" db:"pages_fetched"`
	ListingsFound  int        `json:"listings_found" db:"listings_found"`
	ListingsKept   int        `json:"listings_kept" db:"listings_kept"`
	RecordsWritten int        `json:"records_written" db:"records_written"`
	ErrorsCount    int        `json:"errors_count" db:"errors_count"`
}

type SearchStats struct {
	SearchID          string     `json:"search_id" db:"search_id"`
	LastRunAt         *time.Time `json:"last_run_at" db:"last_run_at"`
	LastRunStatus     string     `json:"last_run_status" db:"last_run_status"`
	TotalRuns         int        `json:"total_runs" db:"total_runs"`
	TotalRecords      int        `json:"total_records" db:"total_records"`
	SuccessRate       float64    `json:"success_rate" db:"success_rate"`
	AvgRunDurationSec int        `json:"avg_run_duration_sec" db:"avg_run_duration_sec"`
}
