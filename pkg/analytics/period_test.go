package analytics

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestResolveRangeNamedPeriods(t *testing.T) {
	tests := []struct {
		period    string
		wantStart time.Time
	}{
		{"7d", fixedNow.AddDate(0, 0, -7)},
		{"30d", fixedNow.AddDate(0, 0, -30)},
		{"3m", fixedNow.AddDate(0, -3, 0)},
		{"6m", fixedNow.AddDate(0, -6, 0)},
		{"1y", fixedNow.AddDate(-1, 0, 0)},
		{"", fixedNow.AddDate(0, 0, -30)},
		{"fortnight", fixedNow.AddDate(0, 0, -30)},
	}
	for _, tt := range tests {
		r := ResolveRange(PeriodSpec{Period: tt.period, Now: fixedNow})
		if !r.Start.Equal(tt.wantStart) {
			t.Errorf("%q: start = %v, want %v", tt.period, r.Start, tt.wantStart)
		}
		if !r.End.Equal(fixedNow) {
			t.Errorf("%q: end = %v, want now", tt.period, r.End)
		}
		if !r.HasPrevious {
			t.Errorf("%q: expected previous window", tt.period)
		}
	}
}

func TestResolveRangeSevenDayPreviousWindow(t *testing.T) {
	r := ResolveRange(PeriodSpec{Period: "7d", Now: fixedNow})
	start := fixedNow.AddDate(0, 0, -7)
	if !r.PreviousEnd.Equal(start.Add(-time.Millisecond)) {
		t.Fatalf("previousEnd = %v, want start - 1ms", r.PreviousEnd)
	}
	if !r.PreviousStart.Equal(start.AddDate(0, 0, -7)) {
		t.Fatalf("previousStart = %v, want start - 7d", r.PreviousStart)
	}

	// An entry on the boundary belongs to exactly one window.
	for _, ts := range []time.Time{start, start.Add(-time.Millisecond), start.Add(-time.Nanosecond)} {
		in := 0
		if r.Contains(ts) {
			in++
		}
		if r.ContainsPrevious(ts) {
			in++
		}
		if in > 1 {
			t.Fatalf("%v counted in both windows", ts)
		}
	}
}

func TestResolveRangeYTD(t *testing.T) {
	r := ResolveRange(PeriodSpec{Period: "ytd", Now: fixedNow})
	if !r.Start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected ytd start %v", r.Start)
	}
	if !r.PreviousStart.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected previous start %v", r.PreviousStart)
	}
	if !r.PreviousEnd.Equal(fixedNow.AddDate(-1, 0, 0)) {
		t.Fatalf("unexpected previous end %v", r.PreviousEnd)
	}
	if !r.HasPrevious {
		t.Fatalf("expected previous window for ytd")
	}
}

func TestResolveRangeAll(t *testing.T) {
	earliest := time.Date(2021, 3, 4, 15, 0, 0, 0, time.UTC)
	r := ResolveRange(PeriodSpec{Period: "all", Now: fixedNow, Earliest: &earliest})
	if !r.Start.Equal(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected start at earliest day, got %v", r.Start)
	}
	if r.HasPrevious {
		t.Fatalf("all has no previous window")
	}

	r = ResolveRange(PeriodSpec{Period: "all", Now: fixedNow})
	if !r.Start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Jan 1 fallback, got %v", r.Start)
	}
}

func TestResolveRangeCustom(t *testing.T) {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC)
	r := ResolveRange(PeriodSpec{Period: "ytd", CustomStart: &start, CustomEnd: &end, Now: fixedNow})
	if r.Period != CustomPeriod || !r.Start.Equal(start) || !r.End.Equal(end) {
		t.Fatalf("custom bounds not applied: %+v", r)
	}
	if !r.PreviousStart.Equal(start.AddDate(0, 0, -10)) {
		t.Fatalf("expected 10-day previous window, got %v", r.PreviousStart)
	}
	if !r.PreviousEnd.Equal(start.Add(-time.Millisecond)) {
		t.Fatalf("unexpected previous end %v", r.PreviousEnd)
	}
}

func TestResolveRangeDegenerateCustom(t *testing.T) {
	ts := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	r := ResolveRange(PeriodSpec{CustomStart: &ts, CustomEnd: &ts, Now: fixedNow})
	if r.HasPrevious {
		t.Fatalf("zero-length window must not report a previous period")
	}

	later := ts.AddDate(0, 0, 5)
	r = ResolveRange(PeriodSpec{CustomStart: &later, CustomEnd: &ts, Now: fixedNow})
	if r.HasPrevious {
		t.Fatalf("inverted window must not report a previous period")
	}
}

func TestEarliestDate(t *testing.T) {
	if EarliestDate(nil) != nil {
		t.Fatalf("expected nil for empty set")
	}
	got := EarliestDate(sampleEntries())
	if got == nil || DateKey(*got) != "2025-01-05" {
		t.Fatalf("unexpected earliest %v", got)
	}
}
