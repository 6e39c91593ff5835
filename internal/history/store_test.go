package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"reframe/internal/batch"
	"reframe/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func sampleSummary() batch.Summary {
	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	return batch.Summary{
		RunID:     "run-123",
		Attempted: 2,
		Processed: 1,
		Started:   started,
		Finished:  started.Add(3 * time.Minute),
		Results: []batch.Result{
			{
				Input:       "/in/a.mov",
				Output:      "/out/a.mp4",
				Outcome:     batch.OutcomeProcessed,
				InputBytes:  1000,
				OutputBytes: 400,
				Elapsed:     90 * time.Second,
			},
			{
				Input:   "/in/b.mov",
				Outcome: batch.OutcomeProbeFailed,
				Err:     errors.New("no video stream"),
			},
		},
	}
}

func TestStoreRecordsAndReadsRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.RecordRun(ctx, sampleSummary()); err != nil {
		t.Fatalf("record: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	run := runs[0]
	if run.RunID != "run-123" || run.Attempted != 2 || run.Processed != 1 {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.FinishedAt.Sub(run.StartedAt) != 3*time.Minute {
		t.Fatalf("unexpected run times %+v", run)
	}

	files, err := store.RunFiles(ctx, "run-123")
	if err != nil {
		t.Fatalf("run files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected two files, got %d", len(files))
	}
	if files[0].Outcome != string(batch.OutcomeProcessed) || files[0].OutputBytes != 400 {
		t.Fatalf("unexpected first record %+v", files[0])
	}
	if files[1].Error != "no video stream" || files[1].Output != "" {
		t.Fatalf("unexpected second record %+v", files[1])
	}
}

func TestStoreOrdersRunsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := sampleSummary()
	first.RunID = "run-1"
	second := sampleSummary()
	second.RunID = "run-2"

	if err := store.RecordRun(ctx, first); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.RecordRun(ctx, second); err != nil {
		t.Fatalf("record: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-2" {
		t.Fatalf("expected newest run first, got %+v", runs)
	}
}

func TestStoreRejectsEmptyPath(t *testing.T) {
	if _, err := history.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.RecordRun(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected persisted run, got %d", len(runs))
	}
}
