package mobile

import (
	"context"
	"encoding/json"
	"strings"

	"finlog/pkg/finlog"
)

// Core wraps the FinLog core for gomobile bindings. A device holds a single
// owner's ledger, so the owner is fixed at Open.
type Core struct {
	core  *finlog.Core
	owner string
}

// Open initializes the core with a database path, the owner ID and an IANA
// zone name (empty means UTC).
func Open(dbPath, ownerID, timezone string) (*Core, error) {
	core, err := finlog.OpenWithOptions(finlog.Options{
		DBPath:   dbPath,
		Location: finlog.LoadLocation(timezone),
	})
	if err != nil {
		return nil, err
	}
	return &Core{core: core, owner: ownerID}, nil
}

// Close releases resources.
func (c *Core) Close() error {
	if c == nil || c.core == nil {
		return nil
	}
	return c.core.Close()
}

// AnalyticsJSON computes analytics for a named period or a custom start/end.
func (c *Core) AnalyticsJSON(period, start, end string) (string, error) {
	spec, err := c.core.PeriodSpec(period, start, end)
	if err != nil {
		return "", err
	}
	data, err := c.core.Analytics(context.Background(), c.owner, spec)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// DashboardJSON returns the yearly dashboard. Zero means the current year.
func (c *Core) DashboardJSON(year int) (string, error) {
	data, err := c.core.Dashboard(context.Background(), c.owner, year)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// HeatmapJSON returns the daily P&L calendar.
func (c *Core) HeatmapJSON(year int) (string, error) {
	data, err := c.core.Heatmap(context.Background(), c.owner, year)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// GoalProgressJSON evaluates every goal.
func (c *Core) GoalProgressJSON() (string, error) {
	data, err := c.core.GoalProgress(context.Background(), c.owner)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// GetEntriesJSON queries entries with optional filter JSON.
func (c *Core) GetEntriesJSON(filterJSON string) (string, error) {
	filter := finlog.EntryFilter{}
	if filterJSON != "" {
		var payload entryFilterPayload
		if err := json.Unmarshal([]byte(filterJSON), &payload); err != nil {
			return "", err
		}
		filter = finlog.EntryFilter{
			EntryType: payload.EntryType,
			Category:  payload.Category,
			Source:    payload.Source,
			Tag:       payload.Tag,
			Year:      payload.Year,
			StartDate: payload.StartDate,
			EndDate:   payload.EndDate,
			Limit:     payload.Limit,
			Offset:    payload.Offset,
		}
	}
	data, err := c.core.GetEntries(context.Background(), c.owner, filter)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// AddEntryJSON creates an entry from JSON and returns id JSON.
func (c *Core) AddEntryJSON(payloadJSON string) (string, error) {
	var req finlog.AddEntryRequest
	if err := json.Unmarshal([]byte(payloadJSON), &req); err != nil {
		return "", err
	}
	id, err := c.core.AddEntry(context.Background(), c.owner, req)
	if err != nil {
		return "", err
	}
	return marshalJSON(map[string]any{"id": id})
}

// DeleteEntry deletes an entry by id.
func (c *Core) DeleteEntry(id string) (bool, error) {
	return c.core.DeleteEntry(context.Background(), c.owner, id)
}

// RecordSnapshot stores a manual portfolio valuation for a day.
func (c *Core) RecordSnapshot(date string, totalValueUSD float64) error {
	_, err := c.core.RecordSnapshot(context.Background(), c.owner, date, totalValueUSD)
	return err
}

// ReportCSV renders the report for [start, end] as CSV.
func (c *Core) ReportCSV(start, end, title string) (string, error) {
	report, err := c.core.Report(context.Background(), c.owner, start, end, title)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := report.WriteCSV(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func marshalJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type entryFilterPayload struct {
	EntryType string `json:"entry_type"`
	Category  string `json:"category"`
	Source    string `json:"source"`
	Tag       string `json:"tag"`
	Year      int    `json:"year"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}
