package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"propwatch/models"
)

// SQLiteStore holds the operational state of the daemon: run history, logs,
// per-search stats and the command queue. Extracted records live in the Sink,
// not here.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY,
		search_id TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		pages_fetched INTEGER,
		listings_found INTEGER,
		listings_kept INTEGER,
		records_written INTEGER,
		errors_count INTEGER
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		search_id TEXT
	);

	CREATE TABLE IF NOT EXISTS search_stats (
		search_id TEXT PRIMARY KEY,
		last_run_at DATETIME,
		last_run_status TEXT,
		total_runs INTEGER,
		total_records INTEGER,
		success_rate REAL,
		avg_run_duration_sec INTEGER
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_search ON scrape_runs(search_id, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.ScrapeRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO scrape_runs (search_id, started_at, status, pages_fetched, listings_found,
			listings_kept, records_written, errors_count)
		VALUES (?, ?, ?, 0, 0, 0, 0, 0)`,
		run.SearchID, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(`
		UPDATE scrape_runs SET finished_at = ?, status = ?, pages_fetched = ?,
			listings_found = ?, listings_kept = ?, records_written = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.PagesFetched, run.ListingsFound,
		run.ListingsKept, run.RecordsWritten, run.ErrorsCount, run.ID)
	return err
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, searchID string) error {
	_, err := s.db.Exec(`
		INSERT INTO scrape_logs (run_id, timestamp, level, message, search_id)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, searchID)
	return err
}

func (s *SQLiteStore) UpdateSearchStats(searchID string) error {
	_, err := s.db.Exec(`
		INSERT INTO search_stats (search_id, last_run_at, last_run_status, total_runs,
			total_records, success_rate, avg_run_duration_sec)
		SELECT
			?,
			(SELECT started_at FROM scrape_runs WHERE search_id = ? ORDER BY started_at DESC LIMIT 1),
			(SELECT status FROM scrape_runs WHERE search_id = ? ORDER BY started_at DESC LIMIT 1),
			(SELECT COUNT(*) FROM scrape_runs WHERE search_id = ?),
			(SELECT COALESCE(SUM(records_written), 0) FROM scrape_runs WHERE search_id = ?),
			(SELECT CAST(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END) AS REAL) /
				NULLIF(COUNT(*), 0) FROM scrape_runs WHERE search_id = ?),
			(SELECT AVG(CAST((julianday(finished_at) - julianday(started_at)) * 86400 AS INTEGER))
				FROM scrape_runs WHERE search_id = ? AND finished_at IS NOT NULL)
		ON CONFLICT(search_id) DO UPDATE SET
			last_run_at = excluded.last_run_at,
			last_run_status = excluded.last_run_status,
			total_runs = excluded.total_runs,
			total_records = excluded.total_records,
			success_rate = excluded.success_rate,
			avg_run_duration_sec = excluded.avg_run_duration_sec`,
		searchID, searchID, searchID, searchID, searchID, searchID, searchID)
	return err
}

func (s *SQLiteStore) GetSearchStats(searchID string) (*models.SearchStats, error) {
	row := s.db.QueryRow(`
		SELECT search_id, last_run_at, last_run_status, total_runs, total_records,
			success_rate, avg_run_duration_sec
		FROM search_stats WHERE search_id = ?`, searchID)

	var st models.SearchStats
	var lastRunAt sql.NullTime
	var lastRunStatus sql.NullString
	var successRate sql.NullFloat64
	var avgDuration sql.NullInt64
	err := row.Scan(&st.SearchID, &lastRunAt, &lastRunStatus, &st.TotalRuns,
		&st.TotalRecords, &successRate, &avgDuration)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastRunAt.Valid {
		st.LastRunAt = &lastRunAt.Time
	}
	st.LastRunStatus = lastRunStatus.String
	st.SuccessRate = successRate.Float64
	st.AvgRunDurationSec = int(avgDuration.Int64)
	return &st, nil
}

func (s *SQLiteStore) GetLastRunTime(searchID string) (time.Time, error) {
	var lastRun time.Time
	err := s.db.QueryRow(`
		SELECT last_run_at FROM search_stats WHERE search_id = ?`, searchID).Scan(&lastRun)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	return lastRun, err
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt, &cmd.ProcessedAt); err != nil {
			return nil, err
		}
		if params.Valid {
			cmd.Params = json.RawMessage(params.String)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) EnqueueCommand(command models.CommandType, params json.RawMessage) error {
	_, err := s.db.Exec(`
		INSERT INTO commands (command, params) VALUES (?, ?)`,
		command, params)
	return err
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func (s *SQLiteStore) ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	if cmd.Params == nil || string(cmd.Params) == "null" {
		return &models.CommandParams{}, nil
	}
	var params models.CommandParams
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}
