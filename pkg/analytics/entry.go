package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryProfit   EntryType = "profit"
	EntryLoss     EntryType = "loss"
	EntryFee      EntryType = "fee"
	EntryTax      EntryType = "tax"
	EntryTransfer EntryType = "transfer"
)

// EntryTypes lists the accepted entry types.
var EntryTypes = []EntryType{EntryProfit, EntryLoss, EntryFee, EntryTax, EntryTransfer}

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	for _, v := range EntryTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsExpense reports whether entries of this type reduce P&L.
func (t EntryType) IsExpense() bool {
	return t == EntryLoss || t == EntryFee || t == EntryTax
}

// Entry is a normalized ledger entry. Amount is always a non-negative magnitude.
type Entry struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"entry_date"`
	Type     EntryType `json:"entry_type"`
	Amount   float64   `json:"amount_usd_base"`
	Category *string   `json:"category"`
	Source   *string   `json:"source"`
	Notes    *string   `json:"notes,omitempty"`
	Tags     []string  `json:"tags"`
}

// SignedEffect returns the entry's contribution to profit and loss.
// Transfers move capital and never count.
func SignedEffect(e Entry) float64 {
	f, _ := signedDecimal(e).Float64()
	return f
}

func signedDecimal(e Entry) decimal.Decimal {
	amount := decimal.NewFromFloat(e.Amount).Abs()
	switch e.Type {
	case EntryProfit:
		return amount
	case EntryLoss, EntryFee, EntryTax:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

// LabelRow is a joined label as returned by a relational select.
type LabelRow struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// RawEntry is an entry row as it arrives from the data store, before normalization.
// Joined labels may be nil, a single row, a list of rows, or a bare string.
// Amount may be a number or a numeric string.
type RawEntry struct {
	ID        string   `json:"id"`
	EntryDate string   `json:"entry_date"`
	EntryType string   `json:"entry_type"`
	Amount    any      `json:"amount_usd_base"`
	Category  any      `json:"categories"`
	Source    any      `json:"sources"`
	Notes     *string  `json:"notes"`
	Tags      []string `json:"tags"`
}

// NormalizeStats reports rows dropped during normalization.
type NormalizeStats struct {
	Rows        int `json:"rows"`
	BadDates    int `json:"bad_dates"`
	BadAmounts  int `json:"bad_amounts"`
	UnknownType int `json:"unknown_type"`
}

// NormalizeRow resolves joined labels and coerces the amount. A non-numeric
// amount becomes 0. The second return value is false when the date cannot be parsed.
func NormalizeRow(raw RawEntry, loc *time.Location) (Entry, bool) {
	e, ok, _ := normalizeRow(raw, loc)
	return e, ok
}

func normalizeRow(raw RawEntry, loc *time.Location) (Entry, bool, bool) {
	date, err := ParseDate(raw.EntryDate, loc)
	amount, amountOK := CoerceAmount(raw.Amount)
	entry := Entry{
		ID:       raw.ID,
		Date:     date,
		Type:     EntryType(strings.ToLower(strings.TrimSpace(raw.EntryType))),
		Amount:   amount,
		Category: ResolveLabel(raw.Category),
		Source:   ResolveLabel(raw.Source),
		Notes:    raw.Notes,
		Tags:     cleanTags(raw.Tags),
	}
	return entry, err == nil, amountOK
}

// NormalizeRows normalizes a batch, dropping rows whose date cannot be parsed.
func NormalizeRows(rows []RawEntry, loc *time.Location) ([]Entry, NormalizeStats) {
	stats := NormalizeStats{Rows: len(rows)}
	out := make([]Entry, 0, len(rows))
	for _, raw := range rows {
		e, dateOK, amountOK := normalizeRow(raw, loc)
		if !amountOK {
			stats.BadAmounts++
		}
		if !e.Type.Valid() {
			stats.UnknownType++
		}
		if !dateOK {
			stats.BadDates++
			continue
		}
		out = append(out, e)
	}
	return out, stats
}

// CoerceAmount converts a stored amount into an absolute float64.
// Anything that is not numeric yields 0 and false.
func CoerceAmount(v any) (float64, bool) {
	var d decimal.Decimal
	switch x := v.(type) {
	case nil:
		return 0, true
	case float64:
		d = decimal.NewFromFloat(x)
	case float32:
		d = decimal.NewFromFloat32(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case decimal.Decimal:
		d = x
	case []byte:
		return CoerceAmount(string(x))
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		d = parsed
	case fmt.Stringer:
		return CoerceAmount(x.String())
	default:
		return 0, false
	}
	f, _ := d.Abs().Float64()
	return f, true
}

// ResolveLabel extracts a single label from a joined field.
func ResolveLabel(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return nonEmpty(x)
	case *string:
		if x == nil {
			return nil
		}
		return nonEmpty(*x)
	case LabelRow:
		return nonEmpty(x.Name)
	case *LabelRow:
		if x == nil {
			return nil
		}
		return nonEmpty(x.Name)
	case []LabelRow:
		if len(x) == 0 {
			return nil
		}
		return nonEmpty(x[0].Name)
	case map[string]any:
		name, _ := x["name"].(string)
		return nonEmpty(name)
	case []any:
		if len(x) == 0 {
			return nil
		}
		return ResolveLabel(x[0])
	default:
		return nil
	}
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ParseDate accepts YYYY-MM-DD, RFC3339 and "YYYY-MM-DD HH:MM:SS" forms.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}

// DateKey formats t as a calendar date in its own location.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func labelOr(label *string, fallback string) string {
	if label == nil {
		return fallback
	}
	return *label
}
