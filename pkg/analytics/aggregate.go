package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Breakdown limits per consumer.
const (
	CategoryBreakdownLimit = 10
	SourceBreakdownLimit   = 8
	TagBreakdownLimit      = 5
	TopEntriesLimit        = 5
	UncategorizedLabel     = "Uncategorized"
)

// Totals is the income/expense/net summary of a set of entries.
type Totals struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
	Count    int     `json:"count"`
}

// ComputeTotals sums profit entries as income and loss/fee/tax as expenses.
// Transfers are counted but contribute to neither side.
func ComputeTotals(entries []Entry) Totals {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, e := range entries {
		effect := signedDecimal(e)
		switch {
		case e.Type == EntryProfit:
			income = income.Add(effect)
		case e.Type.IsExpense():
			expenses = expenses.Sub(effect)
		}
	}
	inc, _ := income.Float64()
	exp, _ := expenses.Float64()
	net, _ := income.Sub(expenses).Float64()
	return Totals{Income: inc, Expenses: exp, Net: net, Count: len(entries)}
}

// Change compares current totals with the previous window, in percent.
type Change struct {
	Income   *float64 `json:"income"`
	Expenses *float64 `json:"expenses"`
	Net      *float64 `json:"net"`
}

// ChangePercent returns the relative change from prev to cur, or nil when prev is 0.
func ChangePercent(cur, prev float64) *float64 {
	if prev == 0 {
		return nil
	}
	v := round1((cur - prev) / math.Abs(prev) * 100)
	return &v
}

func compareTotals(cur Totals, prev *Totals) *Change {
	if prev == nil {
		return nil
	}
	return &Change{
		Income:   ChangePercent(cur.Income, prev.Income),
		Expenses: ChangePercent(cur.Expenses, prev.Expenses),
		Net:      ChangePercent(cur.Net, prev.Net),
	}
}

// BreakdownItem is one ranked label.
type BreakdownItem struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Count   int     `json:"count"`
	Percent string  `json:"percent"`
}

// BreakdownKey selects which label an entry is grouped by.
type BreakdownKey int

const (
	ByCategory BreakdownKey = iota
	BySource
	ByTag
)

func (k BreakdownKey) labels(e Entry) []string {
	switch k {
	case BySource:
		if e.Source == nil {
			return nil
		}
		return []string{*e.Source}
	case ByTag:
		return e.Tags
	default:
		return []string{labelOr(e.Category, UncategorizedLabel)}
	}
}

type labelSum struct {
	label string
	value decimal.Decimal
	count int
	order int
}

// orderedSums accumulates values per label, remembering first-seen order.
type orderedSums struct {
	index map[string]int
	items []labelSum
}

func newOrderedSums() *orderedSums {
	return &orderedSums{index: map[string]int{}}
}

func (s *orderedSums) add(label string, v decimal.Decimal) {
	i, ok := s.index[label]
	if !ok {
		i = len(s.items)
		s.index[label] = i
		s.items = append(s.items, labelSum{label: label, order: i})
	}
	s.items[i].value = s.items[i].value.Add(v)
	s.items[i].count++
}

// ranked sorts by |value| descending, ties by first-seen.
func (s *orderedSums) ranked() []labelSum {
	out := append([]labelSum(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].value.Abs(), out[j].value.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return out[i].order < out[j].order
	})
	return out
}

// Breakdown groups expense entries by key and returns the top limit labels.
// Percentages are relative to the total expenses of all grouped entries.
func Breakdown(entries []Entry, key BreakdownKey, limit int) []BreakdownItem {
	sums := newOrderedSums()
	total := decimal.Zero
	for _, e := range entries {
		if !e.Type.IsExpense() {
			continue
		}
		magnitude := signedDecimal(e).Abs()
		total = total.Add(magnitude)
		for _, label := range key.labels(e) {
			sums.add(label, magnitude)
		}
	}
	ranked := sums.ranked()
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	totalF, _ := total.Float64()
	items := make([]BreakdownItem, 0, len(ranked))
	for _, s := range ranked {
		v, _ := s.value.Float64()
		items = append(items, BreakdownItem{
			Label:   s.label,
			Value:   v,
			Count:   s.count,
			Percent: PercentOf(v, totalF),
		})
	}
	return items
}

// TopEntries holds the largest income and expense entries.
type TopEntries struct {
	Income   []Entry `json:"income"`
	Expenses []Entry `json:"expenses"`
}

// SelectTopEntries returns the k largest profit and expense entries by magnitude.
func SelectTopEntries(entries []Entry, k int) TopEntries {
	var income, expenses []Entry
	for _, e := range entries {
		switch {
		case e.Type == EntryProfit:
			income = append(income, e)
		case e.Type.IsExpense():
			expenses = append(expenses, e)
		}
	}
	return TopEntries{Income: topByMagnitude(income, k), Expenses: topByMagnitude(expenses, k)}
}

func topByMagnitude(entries []Entry, k int) []Entry {
	out := append([]Entry{}, entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Amount) > math.Abs(out[j].Amount)
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// PercentOf formats part/total as a one-decimal percentage, "0%" when total is 0.
func PercentOf(part, total float64) string {
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", part/total*100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// filterEntries returns the entries for which keep returns true.
func filterEntries(entries []Entry, keep func(Entry) bool) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
