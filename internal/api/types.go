package api

import (
	"finlog/pkg/analytics"
	"finlog/pkg/finlog"
)

type addEntryPayload struct {
	EntryDate string   `json:"entry_date"`
	EntryType string   `json:"entry_type"`
	Amount    float64  `json:"amount_usd"`
	Category  *string  `json:"category"`
	Source    *string  `json:"source"`
	Notes     *string  `json:"notes"`
	Tags      []string `json:"tags"`
}

type updateEntryPayload struct {
	EntryDate *string   `json:"entry_date"`
	EntryType *string   `json:"entry_type"`
	Amount    *float64  `json:"amount_usd"`
	Category  *string   `json:"category"`
	Source    *string   `json:"source"`
	Notes     *string   `json:"notes"`
	Tags      *[]string `json:"tags"`
}

type importEntriesPayload struct {
	Rows []analytics.RawEntry `json:"rows"`
}

type labelPayload struct {
	Name string `json:"name"`
}

type addGoalPayload struct {
	Timeframe      string  `json:"timeframe"`
	TargetType     string  `json:"target_type"`
	TargetValueUSD float64 `json:"target_value_usd"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Category       *string `json:"category"`
}

type snapshotPayload struct {
	SnapshotDate  string  `json:"snapshot_date"`
	TotalValueUSD float64 `json:"total_value_usd"`
}

type entriesResponse struct {
	Items  []finlog.Entry `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type deriveSnapshotsResponse struct {
	Points    int                  `json:"points"`
	Snapshots []analytics.Snapshot `json:"snapshots"`
}

func (p addEntryPayload) request() finlog.AddEntryRequest {
	return finlog.AddEntryRequest{
		EntryDate: p.EntryDate,
		EntryType: p.EntryType,
		Amount:    p.Amount,
		Category:  p.Category,
		Source:    p.Source,
		Notes:     p.Notes,
		Tags:      p.Tags,
	}
}

func (p updateEntryPayload) request() finlog.UpdateEntryRequest {
	return finlog.UpdateEntryRequest{
		EntryDate: p.EntryDate,
		EntryType: p.EntryType,
		Amount:    p.Amount,
		Category:  p.Category,
		Source:    p.Source,
		Notes:     p.Notes,
		Tags:      p.Tags,
	}
}
