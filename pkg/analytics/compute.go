// Package analytics turns a ledger of typed, dated entries into totals,
// time series, breakdowns, goal progress, heatmaps and derived snapshots.
//
// Every function here is pure: inputs are never mutated and no I/O happens.
// SignedEffect is the only place entry signs are decided.
package analytics

import "time"

// Meta describes how a Result was computed.
type Meta struct {
	Period        string     `json:"period"`
	Grouping      Grouping   `json:"grouping"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	PreviousStart *time.Time `json:"previous_start,omitempty"`
	PreviousEnd   *time.Time `json:"previous_end,omitempty"`
	HasPrevPeriod bool       `json:"has_prev_period"`
	EntryCount    int        `json:"entry_count"`
}

// Result is the analytics view of one period.
type Result struct {
	Totals            Totals          `json:"totals"`
	PreviousTotals    *Totals         `json:"previous_totals"`
	Change            *Change         `json:"change"`
	ChartData         []SeriesPoint   `json:"chart_data"`
	CategoryBreakdown []BreakdownItem `json:"category_breakdown"`
	SourceBreakdown   []BreakdownItem `json:"source_breakdown"`
	TagBreakdown      []BreakdownItem `json:"tag_breakdown"`
	TopEntries        TopEntries      `json:"top_entries"`
	Goals             []GoalProgress  `json:"goals"`
	PortfolioSeries   []Snapshot      `json:"portfolio_series"`
	Meta              Meta            `json:"meta"`
}

// ComputeAnalytics resolves the period, splits entries into the current and
// previous windows and aggregates the current one. Goals overlapping the
// window are evaluated against all supplied entries.
func ComputeAnalytics(entries []Entry, goals []Goal, snapshots []Snapshot, spec PeriodSpec) Result {
	if spec.Earliest == nil && NormalizePeriod(spec.Period) == PeriodAll {
		spec.Earliest = EarliestDate(entries)
	}
	r := ResolveRange(spec)

	current := filterEntries(entries, func(e Entry) bool { return r.Contains(e.Date) })
	grouping := ChooseGrouping(r.Start, r.End)

	result := Result{
		Totals:            ComputeTotals(current),
		ChartData:         BuildSeries(current, r.Start, r.End, grouping),
		CategoryBreakdown: Breakdown(current, ByCategory, CategoryBreakdownLimit),
		SourceBreakdown:   Breakdown(current, BySource, SourceBreakdownLimit),
		TagBreakdown:      Breakdown(current, ByTag, TagBreakdownLimit),
		TopEntries:        SelectTopEntries(current, TopEntriesLimit),
		Goals:             []GoalProgress{},
		PortfolioSeries:   PortfolioSeries(snapshots, current, r.Contains),
		Meta: Meta{
			Period:        r.Period,
			Grouping:      grouping,
			Start:         r.Start,
			End:           r.End,
			HasPrevPeriod: r.HasPrevious,
			EntryCount:    len(current),
		},
	}
	if result.PortfolioSeries == nil {
		result.PortfolioSeries = []Snapshot{}
	}

	if r.HasPrevious {
		prev := ComputeTotals(filterEntries(entries, func(e Entry) bool { return r.ContainsPrevious(e.Date) }))
		result.PreviousTotals = &prev
		result.Change = compareTotals(result.Totals, &prev)
		ps, pe := r.PreviousStart, r.PreviousEnd
		result.Meta.PreviousStart = &ps
		result.Meta.PreviousEnd = &pe
	}

	for _, g := range goals {
		if g.Overlaps(r.Start, r.End) {
			result.Goals = append(result.Goals, EvaluateGoal(g, entries, snapshots))
		}
	}
	return result
}
