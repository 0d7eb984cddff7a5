package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Tone is the palette a heatmap day is drawn with.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneProfit  Tone = "profit"
	ToneLoss    Tone = "loss"
)

// HeatmapDay is one calendar day's rollup.
type HeatmapDay struct {
	Date        string  `json:"date"`
	Net         float64 `json:"net"`
	Profit      float64 `json:"profit"`
	Loss        float64 `json:"loss"`
	Count       int     `json:"count"`
	TopCategory *string `json:"top_category"`
	TopSource   *string `json:"top_source"`
	Level       int     `json:"level"`
	Tone        Tone    `json:"tone"`
}

// Heatmap bundles a year of days with the color scale used to level them.
type Heatmap struct {
	Year       int          `json:"year"`
	Days       []HeatmapDay `json:"days"`
	Thresholds [4]float64   `json:"thresholds"`
}

var thresholdPercentiles = [4]float64{0.25, 0.5, 0.75, 1}

type dayAccumulator struct {
	net        decimal.Decimal
	profit     decimal.Decimal
	loss       decimal.Decimal
	count      int
	categories *orderedSums
	sources    *orderedSums
}

// BuildHeatmap returns exactly one record per day of year, zero-filled,
// with intensity levels assigned from the year's color thresholds.
func BuildHeatmap(entries []Entry, year int, loc *time.Location) []HeatmapDay {
	return BuildHeatmapScale(entries, year, loc).Days
}

// BuildHeatmapScale is BuildHeatmap plus the thresholds it used.
func BuildHeatmapScale(entries []Entry, year int, loc *time.Location) Heatmap {
	if loc == nil {
		loc = time.UTC
	}
	acc := map[string]*dayAccumulator{}
	for _, e := range entries {
		d := e.Date.In(loc)
		if d.Year() != year {
			continue
		}
		effect := signedDecimal(e)
		if effect.IsZero() {
			continue
		}
		key := DateKey(d)
		a, ok := acc[key]
		if !ok {
			a = &dayAccumulator{categories: newOrderedSums(), sources: newOrderedSums()}
			acc[key] = a
		}
		a.net = a.net.Add(effect)
		if effect.IsPositive() {
			a.profit = a.profit.Add(effect)
		} else {
			a.loss = a.loss.Add(effect.Abs())
		}
		a.count++
		a.categories.add(labelOr(e.Category, UncategorizedLabel), effect)
		if e.Source != nil {
			a.sources.add(*e.Source, effect)
		}
	}

	first := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	next := first.AddDate(1, 0, 0)
	days := make([]HeatmapDay, 0, 366)
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		day := HeatmapDay{Date: DateKey(d), Tone: ToneNeutral}
		if a, ok := acc[day.Date]; ok {
			day.Net, _ = a.net.Float64()
			day.Profit, _ = a.profit.Float64()
			day.Loss, _ = a.loss.Float64()
			day.Count = a.count
			day.TopCategory = topLabel(a.categories)
			day.TopSource = topLabel(a.sources)
			day.Tone = toneOf(day.Net)
		}
		days = append(days, day)
	}

	thresholds := ColorThresholds(days)
	for i := range days {
		days[i].Level = IntensityLevel(math.Abs(days[i].Net), thresholds)
	}
	return Heatmap{Year: year, Days: days, Thresholds: thresholds}
}

func topLabel(s *orderedSums) *string {
	ranked := s.ranked()
	if len(ranked) == 0 {
		return nil
	}
	label := ranked[0].label
	return &label
}

func toneOf(net float64) Tone {
	switch {
	case net > 0:
		return ToneProfit
	case net < 0:
		return ToneLoss
	default:
		return ToneNeutral
	}
}

// ColorThresholds returns the 25th/50th/75th/100th percentile of the non-zero
// |net| values, each picked at index ceil(n*p)-1. All zero when no day is active.
func ColorThresholds(days []HeatmapDay) [4]float64 {
	var mags []float64
	for _, d := range days {
		if m := math.Abs(d.Net); m > 0 {
			mags = append(mags, m)
		}
	}
	var out [4]float64
	if len(mags) == 0 {
		return out
	}
	sort.Float64s(mags)
	n := float64(len(mags))
	for i, p := range thresholdPercentiles {
		idx := int(math.Ceil(n*p)) - 1
		if idx < 0 {
			idx = 0
		}
		out[i] = mags[idx]
	}
	return out
}

// IntensityLevel maps a magnitude to 0–4. Zero is level 0 and anything at the
// top threshold is level 4, so collapsed thresholds still reach the darkest level.
func IntensityLevel(magnitude float64, t [4]float64) int {
	if magnitude <= 0 {
		return 0
	}
	if magnitude >= t[3] {
		return 4
	}
	for i := 0; i < 3; i++ {
		if magnitude <= t[i] {
			return i + 1
		}
	}
	return 4
}
