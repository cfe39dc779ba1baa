package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndQuery(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := Run{ID: "r1", Manifest: "docs.json", Root: ".", StartedAt: start, FinishedAt: start.Add(time.Second), Status: "completed"}
	newer := Run{
		ID: "r2", Manifest: "docs.json", Root: ".",
		StartedAt: start.Add(time.Hour), FinishedAt: start.Add(time.Hour + time.Second),
		TotalChanges: 2, Moved: 1, Skipped: 1, Status: "completed",
	}
	changes := []Change{
		{Source: "/a/9kNyHJ3UeZkJc8Z6JuypBS/x", Destination: "/a/x", Outcome: "move"},
		{Source: "/b/si84FeKzFRrGL6u53ckCQU/y", Destination: "/b/y", Outcome: "missing"},
	}

	if err := l.Record(ctx, older, nil); err != nil {
		t.Fatalf("Record r1: %v", err)
	}
	if err := l.Record(ctx, newer, changes); err != nil {
		t.Fatalf("Record r2: %v", err)
	}

	runs, err := l.Runs(ctx, 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if diff := cmp.Diff([]Run{newer, older}, runs); diff != "" {
		t.Errorf("Runs mismatch (-want +got):\n%s", diff)
	}

	limited, err := l.Runs(ctx, 1)
	if err != nil {
		t.Fatalf("Runs(1): %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "r2" {
		t.Errorf("Runs(1) = %+v, want only r2", limited)
	}

	got, err := l.Changes(ctx, "r2")
	if err != nil {
		t.Fatalf("Changes: %v", err)
	}
	if diff := cmp.Diff(changes, got); diff != "" {
		t.Errorf("Changes mismatch (-want +got):\n%s", diff)
	}

	one, err := l.Run(ctx, "r1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if one.ID != "r1" || !one.StartedAt.Equal(start) {
		t.Errorf("Run(r1) = %+v", one)
	}
}

func TestRun_NotFound(t *testing.T) {
	l := openTestLedger(t)
	if _, err := l.Run(context.Background(), "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("got %v, want ErrRunNotFound", err)
	}
}

func TestRecord_DuplicateRunFails(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	r := Run{ID: "dup", Manifest: "docs.json", Root: ".", StartedAt: time.Now(), FinishedAt: time.Now(), Status: "completed"}
	if err := l.Record(ctx, r, []Change{{Source: "/s", Destination: "/d", Outcome: "move"}}); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := l.Record(ctx, r, []Change{{Source: "/s2", Destination: "/d2", Outcome: "move"}}); err == nil {
		t.Fatal("expected error on duplicate run ID")
	}
	// The failed transaction must not leave stray changes behind.
	got, err := l.Changes(ctx, "dup")
	if err != nil {
		t.Fatalf("Changes: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 change after rollback, got %d", len(got))
	}
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), FileName)

	l, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	now := time.Now()
	if err := l.Record(ctx, Run{ID: "keep", Manifest: "m", Root: "r", StartedAt: now, FinishedAt: now, Status: "completed"}, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	l.Close()

	l2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l2.Close()
	runs, err := l2.Runs(ctx, 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run after reopen, got %d", len(runs))
	}
}
