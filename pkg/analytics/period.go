package analytics

import (
	"strings"
	"time"
)

// Period tokens accepted by ResolveRange.
const (
	Period7Days    = "7d"
	Period30Days   = "30d"
	Period3Months  = "3m"
	Period6Months  = "6m"
	Period1Year    = "1y"
	PeriodYTD      = "ytd"
	PeriodAll      = "all"
	DefaultPeriod  = Period30Days
	CustomPeriod   = "custom"
	previousMargin = time.Millisecond
)

// PeriodSpec describes the window requested by a caller.
type PeriodSpec struct {
	Period      string     `json:"period"`
	CustomStart *time.Time `json:"custom_start,omitempty"`
	CustomEnd   *time.Time `json:"custom_end,omitempty"`
	// Now anchors named periods. Zero means time.Now().
	Now time.Time `json:"-"`
	// Earliest is the date of the owner's first entry, used by "all".
	Earliest *time.Time `json:"-"`
}

// Range is a resolved current window plus the comparable previous one.
type Range struct {
	Period        string    `json:"period"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	PreviousStart time.Time `json:"previous_start"`
	PreviousEnd   time.Time `json:"previous_end"`
	HasPrevious   bool      `json:"has_previous"`
}

// Contains reports whether t falls inside [Start, End].
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ContainsPrevious reports whether t falls inside the previous window.
func (r Range) ContainsPrevious(t time.Time) bool {
	return r.HasPrevious && !t.Before(r.PreviousStart) && !t.After(r.PreviousEnd)
}

// FetchStart is the earliest instant needed to compute both windows.
func (r Range) FetchStart() time.Time {
	if r.HasPrevious && r.PreviousStart.Before(r.Start) {
		return r.PreviousStart
	}
	return r.Start
}

// NormalizePeriod lowercases a token and maps unknown values to the default.
func NormalizePeriod(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	switch p {
	case Period7Days, Period30Days, Period3Months, Period6Months, Period1Year, PeriodYTD, PeriodAll:
		return p
	default:
		return DefaultPeriod
	}
}

// ResolveRange computes the current and previous windows for spec.
func ResolveRange(spec PeriodSpec) Range {
	now := spec.Now
	if now.IsZero() {
		now = time.Now()
	}
	loc := now.Location()

	if spec.CustomStart != nil || spec.CustomEnd != nil {
		end := now
		if spec.CustomEnd != nil {
			end = *spec.CustomEnd
		}
		var start time.Time
		if spec.CustomStart != nil {
			start = *spec.CustomStart
		} else {
			named := spec
			named.CustomStart, named.CustomEnd = nil, nil
			named.Now = end
			start = ResolveRange(named).Start
		}
		return withPrevious(Range{Period: CustomPeriod, Start: start, End: end})
	}

	period := NormalizePeriod(spec.Period)
	r := Range{Period: period, End: now}
	switch period {
	case Period7Days:
		r.Start = now.AddDate(0, 0, -7)
	case Period30Days:
		r.Start = now.AddDate(0, 0, -30)
	case Period3Months:
		r.Start = now.AddDate(0, -3, 0)
	case Period6Months:
		r.Start = now.AddDate(0, -6, 0)
	case Period1Year:
		r.Start = now.AddDate(-1, 0, 0)
	case PeriodYTD:
		r.Start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		r.PreviousStart = time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, loc)
		r.PreviousEnd = now.AddDate(-1, 0, 0)
		r.HasPrevious = !r.PreviousStart.Equal(r.PreviousEnd)
		return r
	case PeriodAll:
		if spec.Earliest != nil && !spec.Earliest.IsZero() {
			e := spec.Earliest.In(loc)
			r.Start = time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc)
		} else {
			r.Start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		}
		return r
	}
	return withPrevious(r)
}

// withPrevious fills the window of identical duration ending just before Start.
func withPrevious(r Range) Range {
	span := r.End.Sub(r.Start)
	r.PreviousEnd = r.Start.Add(-previousMargin)
	r.PreviousStart = r.Start.Add(-span)
	r.HasPrevious = span > 0 && !r.PreviousStart.Equal(r.PreviousEnd)
	return r
}

// EarliestDate returns the first entry date, or nil for an empty set.
func EarliestDate(entries []Entry) *time.Time {
	var earliest *time.Time
	for i := range entries {
		d := entries[i].Date
		if earliest == nil || d.Before(*earliest) {
			earliest = &d
		}
	}
	return earliest
}
