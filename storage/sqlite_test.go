package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"propwatch/models"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := testStore(t)

	run := &models.ScrapeRun{
		SearchID:  "leytonstone",
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}

	runID, err := store.CreateRun(run)
	if err != nil {
		t.Fatalf("create run failed: %v", err)
	}
	run.ID = runID

	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	run.PagesFetched = 2
	run.ListingsFound = 40
	run.ListingsKept = 12
	run.RecordsWritten = 52

	if err := store.UpdateRun(run); err != nil {
		t.Fatalf("update run failed: %v", err)
	}
	if err := store.UpdateSearchStats("leytonstone"); err != nil {
		t.Fatalf("update stats failed: %v", err)
	}

	stats, err := store.GetSearchStats("leytonstone")
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats == nil {
		t.Fatal("expected stats row")
	}
	if stats.TotalRuns != 1 {
		t.Fatalf("expected 1 run, got %d", stats.TotalRuns)
	}
	if stats.TotalRecords != 52 {
		t.Fatalf("expected 52 records, got %d", stats.TotalRecords)
	}
	if stats.LastRunStatus != string(models.RunStatusCompleted) {
		t.Fatalf("unexpected last run status %q", stats.LastRunStatus)
	}
	if stats.SuccessRate != 1.0 {
		t.Fatalf("expected success rate 1.0, got %f", stats.SuccessRate)
	}
}

func TestSQLiteStore_Commands(t *testing.T) {
	store := testStore(t)

	params, _ := json.Marshal(models.CommandParams{Search: "lewisham"})
	if err := store.EnqueueCommand(models.CmdScrapeSearch, params); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	cmds, err := store.GetPendingCommands()
	if err != nil {
		t.Fatalf("get pending failed: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("expected 1 pending command, got %d", len(cmds))
	}
	if cmds[0].Command != models.CmdScrapeSearch {
		t.Fatalf("unexpected command %q", cmds[0].Command)
	}

	parsed, err := store.ParseCommandParams(&cmds[0])
	if err != nil {
		t.Fatalf("parse params failed: %v", err)
	}
	if parsed.Search != "lewisham" {
		t.Fatalf("unexpected search param %q", parsed.Search)
	}

	if err := store.MarkCommandProcessed(cmds[0].ID); err != nil {
		t.Fatalf("mark processed failed: %v", err)
	}

	cmds, err = store.GetPendingCommands()
	if err != nil {
		t.Fatalf("get pending failed: %v", err)
	}
	if len(cmds) != 0 {
		t.Fatalf("expected no pending commands, got %d", len(cmds))
	}
}

func TestSQLiteStore_Logs(t *testing.T) {
	store := testStore(t)

	runID := int64(1)
	if err := store.Log(&runID, models.LogLevelInfo, "starting", "leytonstone"); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if err := store.Log(nil, models.LogLevelError, "detached message", ""); err != nil {
		t.Fatalf("log without run failed: %v", err)
	}
}
