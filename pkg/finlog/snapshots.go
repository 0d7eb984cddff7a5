package finlog

import (
	"context"
	"database/sql"
	"math"
	"strings"

	"github.com/google/uuid"

	"finlog/pkg/analytics"
)

// RecordSnapshot stores a manual portfolio valuation, replacing any
// snapshot already recorded for that day.
func (c *Core) RecordSnapshot(ctx context.Context, ownerID, date string, totalValueUSD float64) (*Snapshot, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if math.IsNaN(totalValueUSD) || math.IsInf(totalValueUSD, 0) {
		return nil, validationError("invalid total_value_usd")
	}
	if strings.TrimSpace(date) == "" {
		date = c.todayISO()
	}
	day, err := c.normalizeDate("snapshot_date", date)
	if err != nil {
		return nil, err
	}

	value := NewAmount(totalValueUSD)
	err = c.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO portfolio_snapshots (id, owner_id, snapshot_date, total_value_usd, source)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(owner_id, snapshot_date) DO UPDATE SET
				total_value_usd = excluded.total_value_usd,
				source = excluded.source,
				updated_at = CURRENT_TIMESTAMP
		`, uuid.NewString(), ownerID, day, value, SnapshotManual); err != nil {
			return err
		}
		return addActivityTx(tx, ownerID, ActivityLog{
			Action:     "record",
			EntityType: "snapshot",
			Details:    stringPtr(day),
			NewValue:   &value,
		})
	})
	if err != nil {
		return nil, dbError("failed to record snapshot", err)
	}
	snapshots, err := c.GetSnapshots(ctx, ownerID, day, day)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, NewError(ErrCodeInternal, "snapshot not found after write")
	}
	return &snapshots[0], nil
}

// GetSnapshots returns snapshots between start and end inclusive, oldest
// first. Empty bounds are open.
func (c *Core) GetSnapshots(ctx context.Context, ownerID, start, end string) ([]Snapshot, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, snapshot_date, total_value_usd, source, updated_at
		FROM portfolio_snapshots
		WHERE owner_id = ?
	`)
	params := []any{ownerID}
	if start != "" {
		query.WriteString(" AND snapshot_date >= ?")
		params = append(params, start)
	}
	if end != "" {
		query.WriteString(" AND snapshot_date <= ?")
		params = append(params, end)
	}
	query.WriteString(" ORDER BY snapshot_date")

	rows, err := c.db.QueryContext(ctx, query.String(), params...)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to fetch snapshots", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var s Snapshot
		var updatedAt sql.NullString
		if err := rows.Scan(&s.ID, &s.SnapshotDate, &s.TotalValueUSD, &s.Source, &updatedAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "failed to scan snapshot", err)
		}
		s.UpdatedAt = nullableString(updatedAt)
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to fetch snapshots", err)
	}
	return snapshots, nil
}

// UpsertDerivedSnapshots stores derived valuations keyed by owner and day.
// Manual snapshots are never overwritten, and re-running with the same
// input leaves the table unchanged.
func (c *Core) UpsertDerivedSnapshots(ctx context.Context, ownerID string, snapshots []analytics.Snapshot) (int, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	written := 0
	err := c.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		written, err = c.upsertDerivedTx(tx, ownerID, snapshots)
		return err
	})
	if err != nil {
		return 0, dbError("failed to upsert snapshots", err)
	}
	return written, nil
}

// DeriveAndStoreSnapshots rebuilds the running-total valuation from the
// owner's whole ledger, upserts it and drops derived rows for days that no
// longer carry entries.
func (c *Core) DeriveAndStoreSnapshots(ctx context.Context, ownerID string) ([]analytics.Snapshot, error) {
	entries, err := c.loadEntries(ctx, ownerID, "", "")
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to fetch analytics", err)
	}
	derived := analytics.DeriveSnapshots(entries)

	var written, removed int
	err = c.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		if written, err = c.upsertDerivedTx(tx, ownerID, derived); err != nil {
			return err
		}
		removed, err = c.pruneDerivedTx(tx, ownerID, derived)
		return err
	})
	if err != nil {
		return nil, dbError("failed to upsert snapshots", err)
	}
	c.logger.Info("derived snapshots stored", "owner", ownerID, "points", len(derived), "written", written, "removed", removed)
	return derived, nil
}

func (c *Core) upsertDerivedTx(tx *sql.Tx, ownerID string, snapshots []analytics.Snapshot) (int, error) {
	written := 0
	for _, s := range snapshots {
		result, err := tx.Exec(`
			INSERT INTO portfolio_snapshots (id, owner_id, snapshot_date, total_value_usd, source)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(owner_id, snapshot_date) DO UPDATE SET
				total_value_usd = excluded.total_value_usd,
				updated_at = CURRENT_TIMESTAMP
			WHERE portfolio_snapshots.source = 'derived'
				AND portfolio_snapshots.total_value_usd <> excluded.total_value_usd
		`, uuid.NewString(), ownerID, analytics.DateKey(s.Date.In(c.loc)), NewAmount(s.TotalValueUSD), SnapshotDerived)
		if err != nil {
			return written, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return written, err
		}
		written += int(affected)
	}
	return written, nil
}

// pruneDerivedTx deletes the owner's derived rows whose day is not in keep.
func (c *Core) pruneDerivedTx(tx *sql.Tx, ownerID string, keep []analytics.Snapshot) (int, error) {
	query := strings.Builder{}
	query.WriteString("DELETE FROM portfolio_snapshots WHERE owner_id = ? AND source = ?")
	params := []any{ownerID, SnapshotDerived}
	if len(keep) > 0 {
		query.WriteString(" AND snapshot_date NOT IN (?" + strings.Repeat(", ?", len(keep)-1) + ")")
		for _, s := range keep {
			params = append(params, analytics.DateKey(s.Date.In(c.loc)))
		}
	}
	result, err := tx.Exec(query.String(), params...)
	if err != nil {
		return 0, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

func (c *Core) analyticsSnapshots(snapshots []Snapshot) []analytics.Snapshot {
	out := make([]analytics.Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		date, err := c.parseDate(s.SnapshotDate)
		if err != nil {
			c.logger.Warn("skipping snapshot with bad date", "snapshot", s.ID, "date", s.SnapshotDate)
			continue
		}
		out = append(out, analytics.Snapshot{
			Date:          date,
			TotalValueUSD: s.TotalValueUSD.Float(),
			Derived:       s.Source == SnapshotDerived,
		})
	}
	return out
}
