package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time portfolio value. Derived marks values rebuilt
// from the ledger rather than recorded by the user.
type Snapshot struct {
	Date          time.Time `json:"snapshot_date"`
	TotalValueUSD float64   `json:"total_value_usd"`
	Derived       bool      `json:"derived"`
}

// DeriveSnapshots accumulates signed effects per distinct entry date, starting
// from zero, and emits one snapshot per date in ascending order.
func DeriveSnapshots(entries []Entry) []Snapshot {
	byDay := map[string]decimal.Decimal{}
	days := map[string]time.Time{}
	for _, e := range entries {
		key := DateKey(e.Date)
		byDay[key] = byDay[key].Add(signedDecimal(e))
		if _, ok := days[key]; !ok {
			days[key] = StartOfDay(e.Date)
		}
	}

	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Snapshot, 0, len(keys))
	running := decimal.Zero
	for _, k := range keys {
		running = running.Add(byDay[k])
		v, _ := running.Float64()
		out = append(out, Snapshot{Date: days[k], TotalValueUSD: v, Derived: true})
	}
	return out
}

// SortSnapshots orders snapshots by date ascending, in place.
func SortSnapshots(snapshots []Snapshot) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Date.Before(snapshots[j].Date)
	})
}

// PortfolioSeries returns recorded snapshots inside keep, or a series derived
// from entries when none are recorded there. Stored derived rows are a copy
// of an earlier derivation and never count as recorded.
func PortfolioSeries(snapshots []Snapshot, entries []Entry, keep func(time.Time) bool) []Snapshot {
	var recorded []Snapshot
	for _, s := range snapshots {
		if !s.Derived && keep(s.Date) {
			recorded = append(recorded, s)
		}
	}
	if len(recorded) > 0 {
		SortSnapshots(recorded)
		return recorded
	}
	var derived []Snapshot
	for _, s := range DeriveSnapshots(entries) {
		if keep(s.Date) {
			derived = append(derived, s)
		}
	}
	return derived
}
