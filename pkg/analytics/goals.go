package analytics

import "time"

// Timeframe is the nominal cadence of a goal.
type Timeframe string

const (
	TimeframeYear    Timeframe = "year"
	TimeframeQuarter Timeframe = "quarter"
	TimeframeMonth   Timeframe = "month"
	TimeframeWeek    Timeframe = "week"
	TimeframeDay     Timeframe = "day"
)

// Timeframes lists accepted goal timeframes.
var Timeframes = []Timeframe{TimeframeYear, TimeframeQuarter, TimeframeMonth, TimeframeWeek, TimeframeDay}

// Valid reports whether t is a known timeframe.
func (t Timeframe) Valid() bool {
	for _, v := range Timeframes {
		if v == t {
			return true
		}
	}
	return false
}

// TargetType selects the metric a goal tracks.
type TargetType string

const (
	TargetIncome          TargetType = "income"
	TargetNet             TargetType = "net"
	TargetPortfolioGrowth TargetType = "portfolio_growth"
)

// TargetTypes lists accepted goal target types.
var TargetTypes = []TargetType{TargetIncome, TargetNet, TargetPortfolioGrowth}

// Valid reports whether t is a known target type.
func (t TargetType) Valid() bool {
	for _, v := range TargetTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Goal is a target scoped to an inclusive date window.
type Goal struct {
	ID             string     `json:"id"`
	Timeframe      Timeframe  `json:"timeframe"`
	TargetType     TargetType `json:"target_type"`
	TargetValueUSD float64    `json:"target_value_usd"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Category       *string    `json:"category"`
}

// Covers reports whether t falls on a calendar day inside the goal window.
func (g Goal) Covers(t time.Time) bool {
	day := StartOfDay(t.In(g.StartDate.Location()))
	return !day.Before(StartOfDay(g.StartDate)) && !day.After(StartOfDay(g.EndDate))
}

// Overlaps reports whether the goal window intersects [start, end].
func (g Goal) Overlaps(start, end time.Time) bool {
	return !StartOfDay(g.StartDate).After(end) && !StartOfDay(g.EndDate).Before(StartOfDay(start))
}

// GoalProgress is the evaluated state of a goal. Progress is unclamped;
// Bar is clamped to [0, 1] for display.
type GoalProgress struct {
	Goal     Goal    `json:"goal"`
	Achieved float64 `json:"achieved"`
	Progress float64 `json:"progress"`
	Bar      float64 `json:"bar"`
	Percent  string  `json:"percent"`
	Totals   Totals  `json:"totals"`
}

// EvaluateGoal scopes entries and snapshots to the goal window and divides
// the achieved metric by the target.
func EvaluateGoal(goal Goal, entries []Entry, snapshots []Snapshot) GoalProgress {
	scoped := filterEntries(entries, func(e Entry) bool {
		if !goal.Covers(e.Date) {
			return false
		}
		if goal.Category != nil {
			return e.Category != nil && *e.Category == *goal.Category
		}
		return true
	})
	totals := ComputeTotals(scoped)

	var achieved float64
	switch goal.TargetType {
	case TargetIncome:
		achieved = totals.Income
	case TargetNet:
		achieved = totals.Net
	case TargetPortfolioGrowth:
		if series := PortfolioSeries(snapshots, entries, goal.Covers); len(series) > 0 {
			achieved = series[len(series)-1].TotalValueUSD
		}
	}

	var progress float64
	if goal.TargetValueUSD != 0 {
		progress = achieved / goal.TargetValueUSD
	}
	return GoalProgress{
		Goal:     goal,
		Achieved: achieved,
		Progress: progress,
		Bar:      clamp01(progress),
		Percent:  PercentOf(achieved, goal.TargetValueUSD),
		Totals:   totals,
	}
}

// EvaluateGoals evaluates each goal against the same inputs.
func EvaluateGoals(goals []Goal, entries []Entry, snapshots []Snapshot) []GoalProgress {
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, EvaluateGoal(g, entries, snapshots))
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
