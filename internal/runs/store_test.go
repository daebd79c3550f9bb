package runs

import (
	"context"
	"errors"
	"testing"
)

func TestStartAndFinishRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	id, err := store.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != StatusRunning {
		t.Fatalf("expected one running entry, got %+v", runs)
	}
	if runs[0].Duration() != 0 {
		t.Fatalf("running entry must report zero duration")
	}

	outcome := Outcome{Playlists: 12, Committed: true, HeadCommit: "abc123"}
	if err := store.Finish(ctx, id, outcome, nil); err != nil {
		t.Fatalf("finish: %v", err)
	}

	runs, err = store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	run := runs[0]
	if run.Status != StatusSucceeded || run.Playlists != 12 || !run.Committed || run.HeadCommit != "abc123" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.FinishedAt.Before(run.StartedAt) {
		t.Fatalf("finished before started: %+v", run)
	}
}

func TestFinishRecordsFailure(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	id, err := store.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := store.Finish(ctx, id, Outcome{}, errors.New("listing failed")); err != nil {
		t.Fatalf("finish: %v", err)
	}

	runs, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if runs[0].Status != StatusFailed || runs[0].Error != "listing failed" {
		t.Fatalf("unexpected run: %+v", runs[0])
	}
}

func TestRecentOrdersNewestFirstAndLimits(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Start(ctx); err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit ignored, got %d entries", len(runs))
	}
}
