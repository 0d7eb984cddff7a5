package analytics

import (
	"math"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func str(s string) *string {
	return &s
}

func entry(date string, typ EntryType, amount float64, category string) Entry {
	e := Entry{ID: date + string(typ), Date: day(date), Type: typ, Amount: amount}
	if category != "" {
		e.Category = str(category)
	}
	return e
}

// sampleEntries is the worked example: one profit and two expenses in January 2025.
func sampleEntries() []Entry {
	return []Entry{
		entry("2025-01-05", EntryProfit, 1000, "Trading"),
		entry("2025-01-10", EntryLoss, 300, "Trading"),
		entry("2025-01-10", EntryFee, 50, "Broker"),
	}
}

func assertFloatEquals(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %.6f, want %.6f", msg, got, want)
	}
}
