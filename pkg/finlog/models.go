package finlog

import "finlog/pkg/analytics"

// LabelKind names one of the owner-scoped label collections.
type LabelKind string

const (
	LabelCategory LabelKind = "category"
	LabelSource   LabelKind = "source"
	LabelTag      LabelKind = "tag"
)

// LabelKinds lists the label collections.
var LabelKinds = []LabelKind{LabelCategory, LabelSource, LabelTag}

var labelTables = map[LabelKind]string{
	LabelCategory: "categories",
	LabelSource:   "sources",
	LabelTag:      "tags",
}

// Label is a category, source or tag.
type Label struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CreatedAt *string `json:"created_at"`
}

// Entry is a stored ledger entry with its joined labels.
type Entry struct {
	ID         string   `json:"id"`
	EntryDate  string   `json:"entry_date"`
	EntryType  string   `json:"entry_type"`
	Amount     Amount   `json:"amount_usd"`
	CategoryID *string  `json:"category_id"`
	Category   *string  `json:"category"`
	SourceID   *string  `json:"source_id"`
	Source     *string  `json:"source"`
	Notes      *string  `json:"notes"`
	Tags       []string `json:"tags"`
	CreatedAt  *string  `json:"created_at"`
	UpdatedAt  *string  `json:"updated_at"`
}

// AddEntryRequest defines inputs to add an entry. Labels are given by name
// and created on first use.
type AddEntryRequest struct {
	EntryDate string   `json:"entry_date"`
	EntryType string   `json:"entry_type"`
	Amount    float64  `json:"amount_usd"`
	Category  *string  `json:"category"`
	Source    *string  `json:"source"`
	Notes     *string  `json:"notes"`
	Tags      []string `json:"tags"`
}

// UpdateEntryRequest changes the non-nil fields of an entry. A non-nil Tags
// replaces the tag set; an empty string clears Category or Source.
type UpdateEntryRequest struct {
	EntryDate *string   `json:"entry_date"`
	EntryType *string   `json:"entry_type"`
	Amount    *float64  `json:"amount_usd"`
	Category  *string   `json:"category"`
	Source    *string   `json:"source"`
	Notes     *string   `json:"notes"`
	Tags      *[]string `json:"tags"`
}

// EntryFilter controls entry queries.
type EntryFilter struct {
	EntryType string
	Category  string
	Source    string
	Tag       string
	Year      int
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

// ImportResult reports the outcome of a bulk import.
type ImportResult struct {
	Imported int                      `json:"imported"`
	Skipped  int                      `json:"skipped"`
	Stats    analytics.NormalizeStats `json:"stats"`
	IDs      []string                 `json:"ids"`
}

// Goal is a stored goal.
type Goal struct {
	ID             string  `json:"id"`
	Timeframe      string  `json:"timeframe"`
	TargetType     string  `json:"target_type"`
	TargetValueUSD Amount  `json:"target_value_usd"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	CategoryID     *string `json:"category_id"`
	Category       *string `json:"category"`
	CreatedAt      *string `json:"created_at"`
}

// AddGoalRequest defines inputs to add a goal.
type AddGoalRequest struct {
	Timeframe      string  `json:"timeframe"`
	TargetType     string  `json:"target_type"`
	TargetValueUSD float64 `json:"target_value_usd"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Category       *string `json:"category"`
}

// Snapshot sources.
const (
	SnapshotManual  = "manual"
	SnapshotDerived = "derived"
)

// Snapshot is a stored portfolio valuation for one day.
type Snapshot struct {
	ID            string  `json:"id"`
	SnapshotDate  string  `json:"snapshot_date"`
	TotalValueUSD Amount  `json:"total_value_usd"`
	Source        string  `json:"source"`
	UpdatedAt     *string `json:"updated_at"`
}

// ActivityLog is an audit record of a mutation.
type ActivityLog struct {
	ID         int64   `json:"id"`
	Action     string  `json:"action"`
	EntityType string  `json:"entity_type"`
	EntityID   *string `json:"entity_id"`
	Details    *string `json:"details"`
	OldValue   *Amount `json:"old_value"`
	NewValue   *Amount `json:"new_value"`
	CreatedAt  *string `json:"created_at"`
}
