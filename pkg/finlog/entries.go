package finlog

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"finlog/pkg/analytics"
)

const tagSeparator = "\x1f"

const entrySelect = `
	SELECT
		e.id, e.entry_date, e.entry_type, e.amount_usd,
		e.category_id, c.name, e.source_id, s.name, e.notes,
		(SELECT GROUP_CONCAT(t.name, char(31))
			FROM entry_tags et JOIN tags t ON t.id = et.tag_id
			WHERE et.entry_id = e.id),
		e.created_at, e.updated_at
	FROM entries e
	LEFT JOIN categories c ON c.id = e.category_id
	LEFT JOIN sources s ON s.id = e.source_id
	WHERE e.owner_id = ?
`

func (c *Core) validateEntry(entryType string, amount float64) (string, error) {
	t := analytics.EntryType(strings.ToLower(strings.TrimSpace(entryType)))
	if !t.Valid() {
		return "", validationError("invalid entry_type: %s", entryType)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", validationError("invalid amount_usd")
	}
	return string(t), nil
}

// AddEntry inserts an entry and returns its ID. Amounts are stored as
// magnitudes; the sign comes from the entry type.
func (c *Core) AddEntry(ctx context.Context, ownerID string, req AddEntryRequest) (string, error) {
	if err := requireOwner(ownerID); err != nil {
		return "", err
	}
	entryType, err := c.validateEntry(req.EntryType, req.Amount)
	if err != nil {
		return "", err
	}
	date := req.EntryDate
	if date == "" {
		date = c.todayISO()
	}
	if date, err = c.normalizeDate("entry_date", date); err != nil {
		return "", err
	}
	req.EntryDate, req.EntryType, req.Amount = date, entryType, math.Abs(req.Amount)

	id := uuid.NewString()
	err = c.WithTx(ctx, func(tx *sql.Tx) error {
		if err := insertEntryTx(tx, ownerID, id, req); err != nil {
			return err
		}
		amount := NewAmount(req.Amount)
		return addActivityTx(tx, ownerID, ActivityLog{
			Action:     "create",
			EntityType: "entry",
			EntityID:   &id,
			Details:    stringPtr(fmt.Sprintf("%s %s", entryType, date)),
			NewValue:   &amount,
		})
	})
	if err != nil {
		return "", dbError("failed to add entry", err)
	}
	return id, nil
}

func insertEntryTx(tx *sql.Tx, ownerID, id string, req AddEntryRequest) error {
	categoryID, err := ensureLabelTx(tx, ownerID, LabelCategory, req.Category)
	if err != nil {
		return err
	}
	sourceID, err := ensureLabelTx(tx, ownerID, LabelSource, req.Source)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO entries (id, owner_id, entry_date, entry_type, amount_usd, category_id, source_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, ownerID, req.EntryDate, req.EntryType, NewAmount(req.Amount), categoryID, sourceID, nullString(req.Notes)); err != nil {
		return err
	}
	return setEntryTagsTx(tx, ownerID, id, req.Tags)
}

// UpdateEntry applies the non-nil fields of req. It returns false when the
// entry does not exist for the owner.
func (c *Core) UpdateEntry(ctx context.Context, ownerID, id string, req UpdateEntryRequest) (bool, error) {
	if err := requireOwner(ownerID); err != nil {
		return false, err
	}
	current, err := c.GetEntry(ctx, ownerID, id)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}

	entryType := current.EntryType
	if req.EntryType != nil {
		entryType = *req.EntryType
	}
	amount := current.Amount.Float()
	if req.Amount != nil {
		amount = *req.Amount
	}
	if entryType, err = c.validateEntry(entryType, amount); err != nil {
		return false, err
	}
	amount = math.Abs(amount)
	date := current.EntryDate
	if req.EntryDate != nil {
		if date, err = c.normalizeDate("entry_date", *req.EntryDate); err != nil {
			return false, err
		}
	}

	err = c.WithTx(ctx, func(tx *sql.Tx) error {
		categoryID, sourceID := current.CategoryID, current.SourceID
		if req.Category != nil {
			if categoryID, err = ensureLabelTx(tx, ownerID, LabelCategory, req.Category); err != nil {
				return err
			}
		}
		if req.Source != nil {
			if sourceID, err = ensureLabelTx(tx, ownerID, LabelSource, req.Source); err != nil {
				return err
			}
		}
		notes := current.Notes
		if req.Notes != nil {
			notes = req.Notes
		}
		if _, err := tx.Exec(`
			UPDATE entries
			SET entry_date = ?, entry_type = ?, amount_usd = ?, category_id = ?, source_id = ?, notes = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE owner_id = ? AND id = ?
		`, date, entryType, NewAmount(amount), categoryID, sourceID, nullString(notes), ownerID, id); err != nil {
			return err
		}
		if req.Tags != nil {
			if err := setEntryTagsTx(tx, ownerID, id, *req.Tags); err != nil {
				return err
			}
		}
		oldAmount, newAmount := current.Amount, NewAmount(amount)
		return addActivityTx(tx, ownerID, ActivityLog{
			Action:     "update",
			EntityType: "entry",
			EntityID:   &id,
			Details:    stringPtr(fmt.Sprintf("%s %s", entryType, date)),
			OldValue:   &oldAmount,
			NewValue:   &newAmount,
		})
	})
	if err != nil {
		return false, dbError("failed to update entry", err)
	}
	return true, nil
}

// GetEntry fetches a single entry, or nil when it does not exist.
func (c *Core) GetEntry(ctx context.Context, ownerID, id string) (*Entry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	row := c.db.QueryRowContext(ctx, entrySelect+" AND e.id = ?", ownerID, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to fetch entry", err)
	}
	return e, nil
}

func buildEntryFilter(ownerID string, filter EntryFilter) (string, []any) {
	query := strings.Builder{}
	params := []any{ownerID}
	if filter.EntryType != "" {
		query.WriteString(" AND e.entry_type = ?")
		params = append(params, strings.ToLower(filter.EntryType))
	}
	if filter.Category != "" {
		query.WriteString(" AND c.name = ?")
		params = append(params, filter.Category)
	}
	if filter.Source != "" {
		query.WriteString(" AND s.name = ?")
		params = append(params, filter.Source)
	}
	if filter.Tag != "" {
		query.WriteString(` AND EXISTS (
			SELECT 1 FROM entry_tags et JOIN tags t ON t.id = et.tag_id
			WHERE et.entry_id = e.id AND t.name = ?)`)
		params = append(params, filter.Tag)
	}
	if filter.Year > 0 {
		query.WriteString(" AND substr(e.entry_date, 1, 4) = ?")
		params = append(params, fmt.Sprintf("%04d", filter.Year))
	}
	if filter.StartDate != "" {
		query.WriteString(" AND e.entry_date >= ?")
		params = append(params, filter.StartDate)
	}
	if filter.EndDate != "" {
		query.WriteString(" AND e.entry_date <= ?")
		params = append(params, filter.EndDate)
	}
	return query.String(), params
}

// GetEntries returns entries matching the filter, newest first.
func (c *Core) GetEntries(ctx context.Context, ownerID string, filter EntryFilter) ([]Entry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	where, params := buildEntryFilter(ownerID, filter)
	query := entrySelect + where + " ORDER BY e.entry_date DESC, e.created_at DESC, e.id LIMIT ? OFFSET ?"
	params = append(params, limit, offset)
	return c.queryEntries(ctx, query, params...)
}

// GetEntryCount returns the number of entries matching the filter.
func (c *Core) GetEntryCount(ctx context.Context, ownerID string, filter EntryFilter) (int, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	where, params := buildEntryFilter(ownerID, filter)
	query := `
		SELECT COUNT(*)
		FROM entries e
		LEFT JOIN categories c ON c.id = e.category_id
		LEFT JOIN sources s ON s.id = e.source_id
		WHERE e.owner_id = ?` + where
	var count int
	if err := c.db.QueryRowContext(ctx, query, params...).Scan(&count); err != nil {
		return 0, WrapError(ErrCodeDatabase, "failed to count entries", err)
	}
	return count, nil
}

// DeleteEntry deletes an entry and its tag links.
func (c *Core) DeleteEntry(ctx context.Context, ownerID, id string) (bool, error) {
	if err := requireOwner(ownerID); err != nil {
		return false, err
	}
	current, err := c.GetEntry(ctx, ownerID, id)
	if err != nil || current == nil {
		return false, err
	}
	err = c.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM entry_tags WHERE entry_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM entries WHERE owner_id = ? AND id = ?", ownerID, id); err != nil {
			return err
		}
		old := current.Amount
		return addActivityTx(tx, ownerID, ActivityLog{
			Action:     "delete",
			EntityType: "entry",
			EntityID:   &id,
			Details:    stringPtr(fmt.Sprintf("%s %s", current.EntryType, current.EntryDate)),
			OldValue:   &old,
		})
	})
	if err != nil {
		return false, dbError("failed to delete entry", err)
	}
	return true, nil
}

// ImportEntries normalizes raw rows and stores the valid ones in a single
// transaction. Rows with unparseable dates or unknown types are skipped;
// unparseable amounts are stored as 0.
func (c *Core) ImportEntries(ctx context.Context, ownerID string, rows []analytics.RawEntry) (*ImportResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	entries, stats := analytics.NormalizeRows(rows, c.loc)
	result := &ImportResult{Stats: stats, IDs: []string{}}

	err := c.WithTx(ctx, func(tx *sql.Tx) error {
		for _, e := range entries {
			if !e.Type.Valid() {
				continue
			}
			id := uuid.NewString()
			req := AddEntryRequest{
				EntryDate: analytics.DateKey(e.Date.In(c.loc)),
				EntryType: string(e.Type),
				Amount:    e.Amount,
				Category:  e.Category,
				Source:    e.Source,
				Notes:     e.Notes,
				Tags:      e.Tags,
			}
			if err := insertEntryTx(tx, ownerID, id, req); err != nil {
				return err
			}
			result.IDs = append(result.IDs, id)
		}
		return addActivityTx(tx, ownerID, ActivityLog{
			Action:     "import",
			EntityType: "entry",
			Details:    stringPtr(fmt.Sprintf("imported %d of %d rows", len(result.IDs), len(rows))),
		})
	})
	if err != nil {
		return nil, dbError("failed to import entries", err)
	}
	result.Imported = len(result.IDs)
	result.Skipped = len(rows) - result.Imported
	c.logger.Info("entries imported", "owner", ownerID, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

func (c *Core) queryEntries(ctx context.Context, query string, params ...any) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to fetch entries", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, WrapError(ErrCodeDatabase, "failed to scan entry", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to fetch entries", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var categoryID, category, sourceID, source, notes, tags, createdAt, updatedAt sql.NullString
	if err := row.Scan(
		&e.ID, &e.EntryDate, &e.EntryType, &e.Amount,
		&categoryID, &category, &sourceID, &source, &notes,
		&tags, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	e.CategoryID = nullableString(categoryID)
	e.Category = nullableString(category)
	e.SourceID = nullableString(sourceID)
	e.Source = nullableString(source)
	e.Notes = nullableString(notes)
	e.CreatedAt = nullableString(createdAt)
	e.UpdatedAt = nullableString(updatedAt)
	e.Tags = []string{}
	if tags.Valid && tags.String != "" {
		e.Tags = strings.Split(tags.String, tagSeparator)
		sort.Strings(e.Tags)
	}
	return &e, nil
}

// rawEntry shapes a stored entry the way a relational select with joined
// label collections returns it, so it passes through the same normalizer
// as imported rows.
func (e Entry) rawEntry() analytics.RawEntry {
	raw := analytics.RawEntry{
		ID:        e.ID,
		EntryDate: e.EntryDate,
		EntryType: e.EntryType,
		Amount:    e.Amount.Decimal,
		Notes:     e.Notes,
		Tags:      e.Tags,
	}
	if e.Category != nil {
		raw.Category = []analytics.LabelRow{{ID: derefString(e.CategoryID), Name: *e.Category}}
	}
	if e.Source != nil {
		raw.Source = []analytics.LabelRow{{ID: derefString(e.SourceID), Name: *e.Source}}
	}
	return raw
}
