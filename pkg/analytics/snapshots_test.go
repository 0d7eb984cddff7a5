package analytics

import (
	"reflect"
	"testing"
	"time"
)

func TestDeriveSnapshots(t *testing.T) {
	entries := append(sampleEntries(),
		entry("2025-01-03", EntryTransfer, 10000, ""),
		entry("2025-01-12", EntryTax, 25, ""),
	)
	got := DeriveSnapshots(entries)
	want := []struct {
		date  string
		value float64
	}{
		{"2025-01-03", 0},
		{"2025-01-05", 1000},
		{"2025-01-10", 650},
		{"2025-01-12", 625},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d snapshots, got %d", len(want), len(got))
	}
	for i, w := range want {
		if DateKey(got[i].Date) != w.date {
			t.Errorf("point %d: date %s, want %s", i, DateKey(got[i].Date), w.date)
		}
		assertFloatEquals(t, got[i].TotalValueUSD, w.value, "running total "+w.date)
		if !got[i].Derived {
			t.Errorf("point %d should be marked derived", i)
		}
	}
}

func TestDeriveSnapshotsIdempotent(t *testing.T) {
	entries := sampleEntries()
	first := DeriveSnapshots(entries)
	second := DeriveSnapshots(entries)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("derivation is not deterministic")
	}
	if len(DeriveSnapshots(nil)) != 0 {
		t.Fatalf("expected no snapshots for empty ledger")
	}
}

func TestPortfolioSeriesPrefersRecorded(t *testing.T) {
	recorded := []Snapshot{
		{Date: day("2025-01-20"), TotalValueUSD: 5},
		{Date: day("2025-01-02"), TotalValueUSD: 3},
	}
	all := func(time.Time) bool { return true }
	series := PortfolioSeries(recorded, sampleEntries(), all)
	if len(series) != 2 || series[0].TotalValueUSD != 3 || series[0].Derived {
		t.Fatalf("expected sorted recorded snapshots, got %+v", series)
	}

	series = PortfolioSeries(nil, sampleEntries(), all)
	if len(series) != 2 || !series[1].Derived {
		t.Fatalf("expected derived fallback, got %+v", series)
	}
}

func TestPortfolioSeriesIgnoresStoredDerivedRows(t *testing.T) {
	stale := []Snapshot{
		{Date: day("2025-01-05"), TotalValueUSD: 1000, Derived: true},
		{Date: day("2025-01-10"), TotalValueUSD: 400, Derived: true},
	}
	all := func(time.Time) bool { return true }
	series := PortfolioSeries(stale, sampleEntries(), all)
	if len(series) != 2 {
		t.Fatalf("expected fresh derivation, got %+v", series)
	}
	assertFloatEquals(t, series[1].TotalValueUSD, 650, "end value follows the ledger")

	mixed := append(stale, Snapshot{Date: day("2025-01-20"), TotalValueUSD: 20000})
	series = PortfolioSeries(mixed, sampleEntries(), all)
	if len(series) != 1 || series[0].Derived || series[0].TotalValueUSD != 20000 {
		t.Fatalf("expected only the recorded snapshot, got %+v", series)
	}
}
