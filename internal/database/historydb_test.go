package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/KENnotcode/taanscrape/internal/model"
)

func testRecords(urls ...string) []*model.MemberRecord {
	records := make([]*model.MemberRecord, 0, len(urls))
	for _, u := range urls {
		rec := &model.MemberRecord{
			OrganizationName: "Org " + u,
			Category:         model.CategoryGeneral,
			SourceURL:        u,
		}
		rec.FillMissing("0")
		records = append(records, rec)
	}
	return records
}

func saveTestRun(t *testing.T, db *HistoryDB, startedAt time.Time, urls ...string) int64 {
	t.Helper()

	records := testRecords(urls...)
	summary := model.NewRunSummary(records, "0", 1)
	id, err := db.SaveRun(context.Background(), startedAt, summary, records, "out.xlsx")
	if err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	return id
}

// TestOpen tests database creation semantics.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates the database on first open", func(t *testing.T) {
		t.Parallel()

		db, err := Open(filepath.Join(t.TempDir(), "history"), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs in a fresh database, got %d", len(runs))
		}
	})

	t.Run("refuses a missing database when creation is disabled", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.CreateIfNotExists = false
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error opening a missing database")
		}
	})
}

// TestSaveRunAndListRuns tests run recording and retrieval order.
func TestSaveRunAndListRuns(t *testing.T) {
	t.Parallel()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	first := saveTestRun(t, db, base, "https://example.test/members/a")
	second := saveTestRun(t, db, base.Add(24*time.Hour),
		"https://example.test/members/a", "https://example.test/members/b")

	runs, err := db.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	// Newest first.
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected order [%d %d], got [%d %d]", second, first, runs[0].ID, runs[1].ID)
	}
	if runs[0].Members != 2 {
		t.Errorf("expected 2 members in latest run, got %d", runs[0].Members)
	}
	if runs[0].OutputFile != "out.xlsx" {
		t.Errorf("unexpected output file: %q", runs[0].OutputFile)
	}

	limited, err := db.ListRuns(context.Background(), 1)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second {
		t.Errorf("expected only the latest run, got %+v", limited)
	}
}

// TestDiffRuns tests the member-set comparison between two runs.
func TestDiffRuns(t *testing.T) {
	t.Parallel()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	older := saveTestRun(t, db, base,
		"https://example.test/members/a",
		"https://example.test/members/b",
		"https://example.test/members/c",
	)
	newer := saveTestRun(t, db, base.Add(24*time.Hour),
		"https://example.test/members/b",
		"https://example.test/members/c",
		"https://example.test/members/d",
		"https://example.test/members/e",
	)

	added, removed, err := db.DiffRuns(context.Background(), older, newer)
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	wantAdded := []string{
		"https://example.test/members/d",
		"https://example.test/members/e",
	}
	if len(added) != len(wantAdded) {
		t.Fatalf("expected %d added, got %d: %v", len(wantAdded), len(added), added)
	}
	for i := range wantAdded {
		if added[i] != wantAdded[i] {
			t.Errorf("added %d: expected %q, got %q", i, wantAdded[i], added[i])
		}
	}

	if len(removed) != 1 || removed[0] != "https://example.test/members/a" {
		t.Errorf("unexpected removed set: %v", removed)
	}

	// Identical runs diff to nothing.
	added, removed, err = db.DiffRuns(context.Background(), newer, newer)
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if len(added) != 0 || len(removed) != 0 {
		t.Errorf("expected empty diff, got added=%v removed=%v", added, removed)
	}
}

// TestSaveRunFailedCount tests that placeholder rows are recorded as failed.
func TestSaveRunFailedCount(t *testing.T) {
	t.Parallel()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ok := testRecords("https://example.test/members/a")[0]
	bad := model.PlaceholderRecord("https://example.test/members/b", model.CategoryGeneral, "0")
	records := []*model.MemberRecord{ok, bad}
	summary := model.NewRunSummary(records, "0", 1)

	if _, err := db.SaveRun(context.Background(), time.Now(), summary, records, "out.xlsx"); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	runs, err := db.ListRuns(context.Background(), 1)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if runs[0].Failed != 1 {
		t.Errorf("expected 1 failed member, got %d", runs[0].Failed)
	}
}
