package finlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "finlog.db")
	core, err := Open(path)
	assertNoError(t, err, "first open")
	if core.DBPath() != path {
		t.Fatalf("unexpected db path %s", core.DBPath())
	}
	_, err = core.AddEntry(context.Background(), testOwner, AddEntryRequest{EntryDate: "2025-01-01", EntryType: "profit", Amount: 1})
	assertNoError(t, err, "add entry")
	assertNoError(t, core.Close(), "close")

	core, err = Open(path)
	assertNoError(t, err, "second open")
	defer core.Close()
	count, err := core.GetEntryCount(context.Background(), testOwner, EntryFilter{})
	assertNoError(t, err, "count")
	if count != 1 {
		t.Fatalf("expected data to survive reopen, got %d", count)
	}
}

func TestSnapshotSourceMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite", path)
	assertNoError(t, err, "open legacy")
	_, err = db.Exec(`CREATE TABLE portfolio_snapshots (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		snapshot_date TEXT NOT NULL,
		total_value_usd REAL NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(owner_id, snapshot_date)
	)`)
	assertNoError(t, err, "create legacy table")
	_, err = db.Exec("INSERT INTO portfolio_snapshots (id, owner_id, snapshot_date, total_value_usd) VALUES ('s1', ?, '2025-01-01', 10)", testOwner)
	assertNoError(t, err, "insert legacy row")
	db.Close()

	core, err := Open(path)
	assertNoError(t, err, "open migrated")
	defer core.Close()
	snapshots, err := core.GetSnapshots(context.Background(), testOwner, "", "")
	assertNoError(t, err, "get snapshots")
	if len(snapshots) != 1 || snapshots[0].Source != SnapshotManual {
		t.Fatalf("expected legacy row tagged manual, got %+v", snapshots)
	}
}

func TestIsErrorCodeUnwraps(t *testing.T) {
	base := WrapError(ErrCodeDatabase, "failed to fetch analytics", errors.New("disk"))
	wrapped := fmt.Errorf("handler: %w", base)
	if !IsErrorCode(wrapped, ErrCodeDatabase) {
		t.Fatalf("expected wrapped code to match")
	}
	if IsErrorCode(wrapped, ErrCodeNotFound) || IsErrorCode(nil, ErrCodeDatabase) {
		t.Fatalf("unexpected match")
	}
	if base.Error() != "DATABASE_ERROR: failed to fetch analytics: disk" {
		t.Fatalf("unexpected message %q", base.Error())
	}
	if !errors.Is(wrapped, base.Err) {
		t.Fatalf("expected Unwrap chain")
	}
}

func TestMethodsOnClosedDBReturnError(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()
	_ = core.Close()
	ctx := context.Background()

	if _, err := core.GetEntries(ctx, testOwner, EntryFilter{}); err == nil {
		t.Fatalf("expected error from GetEntries")
	}
	if _, err := core.GetLabels(ctx, testOwner, LabelCategory); err == nil {
		t.Fatalf("expected error from GetLabels")
	}
	if _, err := core.AddEntry(ctx, testOwner, AddEntryRequest{EntryType: "profit", Amount: 1}); err == nil {
		t.Fatalf("expected error from AddEntry")
	}
	if _, err := core.GetActivityLogs(ctx, testOwner, 0, 0); err == nil {
		t.Fatalf("expected error from GetActivityLogs")
	}

	_, err := core.Analytics(ctx, testOwner, analyticsSpec("ytd"))
	assertErrorCode(t, err, ErrCodeDatabase, "Analytics")
	var structured *Error
	if !errors.As(err, &structured) || structured.Message != "failed to fetch analytics" {
		t.Fatalf("expected typed fetch failure, got %v", err)
	}
	_, err = core.Dashboard(ctx, testOwner, 2025)
	assertErrorCode(t, err, ErrCodeDatabase, "Dashboard")
	_, err = core.Heatmap(ctx, testOwner, 2025)
	assertErrorCode(t, err, ErrCodeDatabase, "Heatmap")
}

func TestOwnerRequired(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := core.AddEntry(ctx, "", AddEntryRequest{EntryType: "profit", Amount: 1})
	assertErrorCode(t, err, ErrCodeUnauthorized, "AddEntry")
	_, err = core.Analytics(ctx, "", analyticsSpec("30d"))
	assertErrorCode(t, err, ErrCodeUnauthorized, "Analytics")
	_, err = core.GetSnapshots(ctx, "", "", "")
	assertErrorCode(t, err, ErrCodeUnauthorized, "GetSnapshots")
}
