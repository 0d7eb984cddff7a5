package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RecentEntriesLimit is the number of recent entries shown on the dashboard.
const RecentEntriesLimit = 5

// PortfolioSummary compares the first and last portfolio values of a year.
type PortfolioSummary struct {
	StartValue    float64 `json:"start_value"`
	EndValue      float64 `json:"end_value"`
	Change        float64 `json:"change"`
	ChangePercent string  `json:"change_percent"`
	Points        int     `json:"points"`
	Derived       bool    `json:"derived"`
}

// Contribution is a label's signed share of a year's P&L.
type Contribution struct {
	Label   string  `json:"label"`
	Net     float64 `json:"net"`
	Percent string  `json:"percent"`
}

// NetSeries holds net P&L at several resolutions.
type NetSeries struct {
	Monthly   []SeriesPoint `json:"monthly"`
	Quarterly []SeriesPoint `json:"quarterly"`
	HalfYear  []SeriesPoint `json:"half_year"`
	Yearly    []SeriesPoint `json:"yearly"`
	All       []SeriesPoint `json:"all"`
}

// DashboardYearData is everything the yearly dashboard shows.
type DashboardYearData struct {
	Year                 int              `json:"year"`
	Targets              []GoalProgress   `json:"targets"`
	Portfolio            PortfolioSummary `json:"portfolio"`
	PnL                  Totals           `json:"pnl"`
	AverageMonthlyNet    float64          `json:"average_monthly_net"`
	CategoryContribution []Contribution   `json:"category_contribution"`
	NetSeries            NetSeries        `json:"net_series"`
	PortfolioSeries      []Snapshot       `json:"portfolio_series"`
	RecentEntries        []Entry          `json:"recent_entries"`
	HeatmapDays          []HeatmapDay     `json:"heatmap_days"`
	Thresholds           [4]float64       `json:"thresholds"`
	HasTaxOrFee          bool             `json:"has_tax_or_fee"`
}

// ComputeDashboard builds the dashboard for year. entries may span several
// years; the yearly and all-time series use all of them.
func ComputeDashboard(entries []Entry, goals []Goal, snapshots []Snapshot, year int, now time.Time) DashboardYearData {
	if now.IsZero() {
		now = time.Now()
	}
	loc := now.Location()
	inYear := func(t time.Time) bool { return t.In(loc).Year() == year }
	yearEntries := filterEntries(entries, func(e Entry) bool { return inYear(e.Date) })

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	yearEnd := yearStart.AddDate(1, 0, 0).Add(-time.Nanosecond)

	pnl := ComputeTotals(yearEntries)
	heatmap := BuildHeatmapScale(yearEntries, year, loc)

	data := DashboardYearData{
		Year:                 year,
		Targets:              []GoalProgress{},
		PnL:                  pnl,
		AverageMonthlyNet:    round2(pnl.Net / float64(monthsElapsed(year, now))),
		CategoryContribution: CategoryContribution(yearEntries),
		NetSeries: NetSeries{
			Monthly:   BuildSeries(yearEntries, yearStart, yearEnd, GroupMonth),
			Quarterly: periodSeries(yearEntries, year, loc, 3, "Q"),
			HalfYear:  periodSeries(yearEntries, year, loc, 6, "H"),
			Yearly:    yearlySeries(entries, loc),
			All:       cumulativeSeries(entries, loc),
		},
		RecentEntries: RecentEntries(yearEntries, RecentEntriesLimit),
		HeatmapDays:   heatmap.Days,
		Thresholds:    heatmap.Thresholds,
	}

	for _, e := range yearEntries {
		if e.Type == EntryTax || e.Type == EntryFee {
			data.HasTaxOrFee = true
			break
		}
	}

	for _, g := range goals {
		if g.Overlaps(yearStart, yearEnd) {
			data.Targets = append(data.Targets, EvaluateGoal(g, entries, snapshots))
		}
	}

	data.PortfolioSeries = PortfolioSeries(snapshots, yearEntries, inYear)
	if data.PortfolioSeries == nil {
		data.PortfolioSeries = []Snapshot{}
	}
	data.Portfolio = summarizePortfolio(data.PortfolioSeries)
	return data
}

func monthsElapsed(year int, now time.Time) int {
	switch {
	case year < now.Year():
		return 12
	case year == now.Year():
		return int(now.Month())
	default:
		return 1
	}
}

func summarizePortfolio(series []Snapshot) PortfolioSummary {
	if len(series) == 0 {
		return PortfolioSummary{ChangePercent: "0%"}
	}
	first, last := series[0], series[len(series)-1]
	change := last.TotalValueUSD - first.TotalValueUSD
	return PortfolioSummary{
		StartValue:    first.TotalValueUSD,
		EndValue:      last.TotalValueUSD,
		Change:        change,
		ChangePercent: PercentOf(change, math.Abs(first.TotalValueUSD)),
		Points:        len(series),
		Derived:       last.Derived,
	}
}

// CategoryContribution returns each category's signed net, ranked by magnitude.
// Percentages are shares of the summed magnitudes, so they add up to 100.
func CategoryContribution(entries []Entry) []Contribution {
	sums := newOrderedSums()
	for _, e := range entries {
		effect := signedDecimal(e)
		if effect.IsZero() {
			continue
		}
		sums.add(labelOr(e.Category, UncategorizedLabel), effect)
	}
	ranked := sums.ranked()
	total := decimal.Zero
	for _, s := range ranked {
		total = total.Add(s.value.Abs())
	}
	totalF, _ := total.Float64()
	out := make([]Contribution, 0, len(ranked))
	for _, s := range ranked {
		net, _ := s.value.Float64()
		out = append(out, Contribution{Label: s.label, Net: net, Percent: PercentOf(math.Abs(net), totalF)})
	}
	return out
}

// RecentEntries returns up to k entries, newest first.
func RecentEntries(entries []Entry, k int) []Entry {
	out := append([]Entry{}, entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// periodSeries splits a year into blocks of months months, labelled prefix+index.
func periodSeries(entries []Entry, year int, loc *time.Location, months int, prefix string) []SeriesPoint {
	var out []SeriesPoint
	for i, m := 0, 1; m <= 12; i, m = i+1, m+months {
		start := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, months, 0)
		t := ComputeTotals(filterEntries(entries, func(e Entry) bool {
			d := e.Date.In(loc)
			return !d.Before(start) && d.Before(end)
		}))
		out = append(out, SeriesPoint{
			Date:     DateKey(start),
			Label:    fmt.Sprintf("%s%d %d", prefix, i+1, year),
			Income:   t.Income,
			Expenses: t.Expenses,
			Net:      t.Net,
		})
	}
	return out
}

// yearlySeries has one point per calendar year between the first and last entry.
func yearlySeries(entries []Entry, loc *time.Location) []SeriesPoint {
	if len(entries) == 0 {
		return []SeriesPoint{}
	}
	first, last := entries[0].Date.In(loc), entries[0].Date.In(loc)
	for _, e := range entries[1:] {
		d := e.Date.In(loc)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return BuildSeries(inLocation(entries, loc), first, last, GroupYear)
}

// cumulativeSeries is the running monthly net across the whole ledger.
func cumulativeSeries(entries []Entry, loc *time.Location) []SeriesPoint {
	if len(entries) == 0 {
		return []SeriesPoint{}
	}
	located := inLocation(entries, loc)
	first := EarliestDate(located)
	latest := located[0].Date
	for _, e := range located {
		if e.Date.After(latest) {
			latest = e.Date
		}
	}
	monthly := BuildSeries(located, *first, latest, GroupMonth)
	running := decimal.Zero
	for i := range monthly {
		running = running.Add(decimal.NewFromFloat(monthly[i].Net))
		monthly[i].Net, _ = running.Float64()
	}
	return monthly
}

func inLocation(entries []Entry, loc *time.Location) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Date = e.Date.In(loc)
		out[i] = e
	}
	return out
}
