package analytics

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"
)

func dashboardEntries() []Entry {
	return append(sampleEntries(),
		entry("2024-11-02", EntryProfit, 200, "Trading"),
		entry("2025-04-15", EntryTax, 120, "Tax"),
		entry("2025-07-01", EntryProfit, 400, "Dividends"),
		entry("2025-07-02", EntryTransfer, 5000, "Deposit"),
	)
}

func TestComputeDashboard(t *testing.T) {
	now := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
	goals := []Goal{
		{ID: "in", TargetType: TargetIncome, TargetValueUSD: 2800, StartDate: day("2025-01-01"), EndDate: day("2025-12-31")},
		{ID: "out", TargetType: TargetIncome, TargetValueUSD: 10, StartDate: day("2023-01-01"), EndDate: day("2023-12-31")},
	}
	data := ComputeDashboard(dashboardEntries(), goals, nil, 2025, now)

	assertFloatEquals(t, data.PnL.Income, 1400, "income")
	assertFloatEquals(t, data.PnL.Expenses, 470, "expenses")
	assertFloatEquals(t, data.PnL.Net, 930, "net")
	assertFloatEquals(t, data.AverageMonthlyNet, 103.33, "average monthly net over 9 months")
	if !data.HasTaxOrFee {
		t.Errorf("expected HasTaxOrFee")
	}
	if len(data.HeatmapDays) != 365 {
		t.Fatalf("expected 365 heatmap days, got %d", len(data.HeatmapDays))
	}
	if len(data.Targets) != 1 || data.Targets[0].Goal.ID != "in" {
		t.Fatalf("expected only the 2025 goal, got %+v", data.Targets)
	}
	assertFloatEquals(t, data.Targets[0].Progress, 0.5, "goal progress")

	if len(data.RecentEntries) != RecentEntriesLimit || DateKey(data.RecentEntries[0].Date) != "2025-07-02" {
		t.Fatalf("unexpected recent entries: %+v", data.RecentEntries)
	}

	series := data.NetSeries
	if len(series.Monthly) != 12 || len(series.Quarterly) != 4 || len(series.HalfYear) != 2 {
		t.Fatalf("unexpected series sizes %d/%d/%d", len(series.Monthly), len(series.Quarterly), len(series.HalfYear))
	}
	assertFloatEquals(t, series.Monthly[0].Net, 650, "January net")
	assertFloatEquals(t, series.Quarterly[1].Net, -120, "Q2 net")
	assertFloatEquals(t, series.HalfYear[1].Net, 400, "H2 net")
	if series.Quarterly[0].Label != "Q1 2025" {
		t.Errorf("unexpected quarter label %q", series.Quarterly[0].Label)
	}
	if len(series.Yearly) != 2 {
		t.Fatalf("expected 2024 and 2025 yearly points, got %d", len(series.Yearly))
	}
	assertFloatEquals(t, series.Yearly[0].Net, 200, "2024 net")
	last := series.All[len(series.All)-1]
	assertFloatEquals(t, last.Net, 1130, "cumulative net")

	if !data.Portfolio.Derived || data.Portfolio.EndValue != 930 {
		t.Fatalf("expected derived portfolio ending at 930, got %+v", data.Portfolio)
	}
	if len(data.CategoryContribution) == 0 || data.CategoryContribution[0].Label != "Trading" {
		t.Fatalf("unexpected contribution ranking %+v", data.CategoryContribution)
	}
}

func TestComputeDashboardRecordedSnapshots(t *testing.T) {
	snapshots := []Snapshot{
		{Date: day("2025-02-01"), TotalValueUSD: 10000},
		{Date: day("2025-08-01"), TotalValueUSD: 12500},
		{Date: day("2024-12-31"), TotalValueUSD: 1},
	}
	data := ComputeDashboard(nil, nil, snapshots, 2025, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	if data.Portfolio.Derived || data.Portfolio.Points != 2 {
		t.Fatalf("expected 2 recorded points, got %+v", data.Portfolio)
	}
	assertFloatEquals(t, data.Portfolio.Change, 2500, "portfolio change")
	if data.Portfolio.ChangePercent != "25.0%" {
		t.Errorf("unexpected change percent %s", data.Portfolio.ChangePercent)
	}
	if data.AverageMonthlyNet != 0 || data.HasTaxOrFee {
		t.Errorf("unexpected empty-year values %+v", data)
	}
	if len(data.NetSeries.Yearly) != 0 || len(data.NetSeries.All) != 0 {
		t.Errorf("expected empty long-range series")
	}
}

func TestBuildReportCSV(t *testing.T) {
	entries := dashboardEntries()
	entries[0].Notes = str("weekly, summary")
	report := BuildReport(entries, day("2025-01-01"), day("2025-01-31"), "January 2025")
	assertFloatEquals(t, report.Totals.Net, 650, "report net")
	if len(report.Entries) != 3 || DateKey(report.Entries[0].Date) != "2025-01-05" {
		t.Fatalf("expected 3 chronological entries, got %+v", report.Entries)
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if records[0][0] != "date" || records[1][7] != "weekly, summary" {
		t.Fatalf("unexpected csv rows: %v", records[:2])
	}
	if records[1][3] != "1000.00" || records[2][3] != "-300.00" {
		t.Fatalf("unexpected net effect columns: %v %v", records[1], records[2])
	}
	footer := records[len(records)-1]
	if footer[0] != "net" || footer[1] != "650.00" {
		t.Fatalf("unexpected footer %v", footer)
	}
}
