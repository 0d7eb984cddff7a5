package finlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testOwner = "owner-1"

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB creates a temporary database with a fixed clock.
// The caller should defer cleanup() to remove the temp file.
func setupTestDB(t *testing.T) (*Core, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "finlog-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	core, err := OpenWithOptions(Options{
		DBPath: filepath.Join(tmpDir, "test.db"),
		Now:    func() time.Time { return testNow },
	})
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to open test db: %v", err)
	}

	cleanup := func() {
		core.Close()
		os.RemoveAll(tmpDir)
	}
	return core, cleanup
}

// seedExampleEntries stores the January ledger used across tests:
// profit 1000 on the 5th, loss 300 and fee 50 on the 10th.
func seedExampleEntries(t *testing.T, core *Core) []string {
	t.Helper()
	reqs := []AddEntryRequest{
		{EntryDate: "2025-01-05", EntryType: "profit", Amount: 1000, Category: stringPtr("Trading"), Source: stringPtr("IBKR")},
		{EntryDate: "2025-01-10", EntryType: "loss", Amount: 300, Category: stringPtr("Trading"), Tags: []string{"options"}},
		{EntryDate: "2025-01-10", EntryType: "fee", Amount: 50, Category: stringPtr("Broker"), Tags: []string{"options", "monthly"}},
	}
	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		id, err := core.AddEntry(context.Background(), testOwner, req)
		assertNoError(t, err, "seed entry")
		ids = append(ids, id)
	}
	return ids
}

func floatEquals(a, b, epsilon float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}

// assertFloatEquals fails the test if the floats are not approximately equal.
func assertFloatEquals(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if !floatEquals(got, want, 0.001) {
		t.Errorf("%s: got %.4f, want %.4f", msg, got, want)
	}
}

// assertNoError fails the test if err is not nil.
func assertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", msg, err)
	}
}

// assertErrorCode fails the test unless err carries code.
func assertErrorCode(t *testing.T, err error, code ErrorCode, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected %s error but got nil", msg, code)
	}
	if !IsErrorCode(err, code) {
		t.Fatalf("%s: expected %s, got %v", msg, code, err)
	}
}
