package analytics

import "testing"

func TestEvaluateGoalNet(t *testing.T) {
	goal := Goal{
		TargetType:     TargetNet,
		TargetValueUSD: 1000,
		StartDate:      day("2025-01-01"),
		EndDate:        day("2025-01-31"),
	}
	p := EvaluateGoal(goal, sampleEntries(), nil)
	assertFloatEquals(t, p.Progress, 0.65, "progress")
	assertFloatEquals(t, p.Achieved, 650, "achieved")
	if p.Percent != "65.0%" {
		t.Errorf("unexpected percent %s", p.Percent)
	}
}

func TestEvaluateGoalInclusiveWindow(t *testing.T) {
	goal := Goal{
		TargetType:     TargetIncome,
		TargetValueUSD: 500,
		StartDate:      day("2025-01-05"),
		EndDate:        day("2025-01-05"),
	}
	p := EvaluateGoal(goal, sampleEntries(), nil)
	assertFloatEquals(t, p.Progress, 2, "income progress on single-day window")
	if p.Bar != 1 {
		t.Errorf("expected clamped bar 1, got %v", p.Bar)
	}
}

func TestEvaluateGoalNegativeNet(t *testing.T) {
	goal := Goal{
		TargetType:     TargetNet,
		TargetValueUSD: 100,
		StartDate:      day("2025-01-10"),
		EndDate:        day("2025-01-10"),
	}
	p := EvaluateGoal(goal, sampleEntries(), nil)
	assertFloatEquals(t, p.Progress, -3.5, "negative progress is not clamped")
	if p.Bar != 0 {
		t.Errorf("expected bar clamped to 0, got %v", p.Bar)
	}
}

func TestEvaluateGoalPortfolioGrowth(t *testing.T) {
	snapshots := []Snapshot{
		{Date: day("2024-12-31"), TotalValueUSD: 9000},
		{Date: day("2025-01-20"), TotalValueUSD: 12000},
		{Date: day("2025-01-10"), TotalValueUSD: 11000},
		{Date: day("2025-02-01"), TotalValueUSD: 15000},
	}
	goal := Goal{
		TargetType:     TargetPortfolioGrowth,
		TargetValueUSD: 20000,
		StartDate:      day("2025-01-01"),
		EndDate:        day("2025-01-31"),
	}
	p := EvaluateGoal(goal, nil, snapshots)
	assertFloatEquals(t, p.Achieved, 12000, "last snapshot in window")
	assertFloatEquals(t, p.Progress, 0.6, "progress")

	goal.StartDate, goal.EndDate = day("2023-01-01"), day("2023-12-31")
	p = EvaluateGoal(goal, nil, snapshots)
	if p.Achieved != 0 || p.Progress != 0 {
		t.Fatalf("expected zero without snapshots in range, got %+v", p)
	}
}

func TestEvaluateGoalZeroTarget(t *testing.T) {
	goal := Goal{TargetType: TargetIncome, StartDate: day("2025-01-01"), EndDate: day("2025-12-31")}
	p := EvaluateGoal(goal, sampleEntries(), nil)
	if p.Progress != 0 {
		t.Fatalf("expected progress 0 for zero target, got %v", p.Progress)
	}
	if p.Percent != "0%" {
		t.Fatalf("expected 0%%, got %s", p.Percent)
	}
}

func TestEvaluateGoalCategoryScope(t *testing.T) {
	goal := Goal{
		TargetType:     TargetNet,
		TargetValueUSD: 100,
		StartDate:      day("2025-01-01"),
		EndDate:        day("2025-01-31"),
		Category:       str("Broker"),
	}
	p := EvaluateGoal(goal, sampleEntries(), nil)
	assertFloatEquals(t, p.Achieved, -50, "category-scoped net")
}

func TestEvaluateGoals(t *testing.T) {
	goals := []Goal{
		{TargetType: TargetIncome, TargetValueUSD: 2000, StartDate: day("2025-01-01"), EndDate: day("2025-12-31")},
		{TargetType: TargetNet, TargetValueUSD: 1300, StartDate: day("2025-01-01"), EndDate: day("2025-12-31")},
	}
	got := EvaluateGoals(goals, sampleEntries(), nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	assertFloatEquals(t, got[0].Progress, 0.5, "income goal")
	assertFloatEquals(t, got[1].Progress, 0.5, "net goal")
}

func TestEvaluateGoalPortfolioGrowthDerivesFromLedger(t *testing.T) {
	stale := []Snapshot{{Date: day("2025-01-10"), TotalValueUSD: 99999, Derived: true}}
	goal := Goal{
		TargetType:     TargetPortfolioGrowth,
		TargetValueUSD: 1000,
		StartDate:      day("2025-01-01"),
		EndDate:        day("2025-01-31"),
	}
	p := EvaluateGoal(goal, sampleEntries(), stale)
	assertFloatEquals(t, p.Achieved, 650, "running total from entries")
	assertFloatEquals(t, p.Progress, 0.65, "progress")
}
