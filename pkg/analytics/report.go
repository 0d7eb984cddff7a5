package analytics

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Report is a printable summary of a date window.
type Report struct {
	Title      string          `json:"title"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Totals     Totals          `json:"totals"`
	Categories []BreakdownItem `json:"categories"`
	Sources    []BreakdownItem `json:"sources"`
	Tags       []BreakdownItem `json:"tags"`
	Top        TopEntries      `json:"top"`
	Entries    []Entry         `json:"entries"`
}

// BuildReport summarizes entries in [start, end]. Breakdowns are not capped.
func BuildReport(entries []Entry, start, end time.Time, title string) Report {
	scoped := filterEntries(entries, func(e Entry) bool {
		return !e.Date.Before(start) && !e.Date.After(end)
	})
	ordered := append([]Entry{}, scoped...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })
	return Report{
		Title:      title,
		Start:      start,
		End:        end,
		Totals:     ComputeTotals(scoped),
		Categories: Breakdown(scoped, ByCategory, 0),
		Sources:    Breakdown(scoped, BySource, 0),
		Tags:       Breakdown(scoped, ByTag, 0),
		Top:        SelectTopEntries(scoped, TopEntriesLimit),
		Entries:    ordered,
	}
}

// WriteCSV writes the report's entries followed by a totals footer.
func (r Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "type", "amount_usd", "net_effect", "category", "source", "tags", "notes"}); err != nil {
		return err
	}
	for _, e := range r.Entries {
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		if err := cw.Write([]string{
			DateKey(e.Date),
			string(e.Type),
			formatAmount(e.Amount),
			formatAmount(SignedEffect(e)),
			labelOr(e.Category, ""),
			labelOr(e.Source, ""),
			strings.Join(e.Tags, ";"),
			notes,
		}); err != nil {
			return err
		}
	}
	footer := [][]string{
		{},
		{"income", formatAmount(r.Totals.Income)},
		{"expenses", formatAmount(r.Totals.Expenses)},
		{"net", formatAmount(r.Totals.Net)},
	}
	for _, row := range footer {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
