package finlog

import (
	"context"
	"database/sql"
)

func addActivityTx(tx *sql.Tx, ownerID string, log ActivityLog) error {
	_, err := tx.Exec(`
		INSERT INTO activity_logs (owner_id, action, entity_type, entity_id, details, old_value, new_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ownerID, log.Action, log.EntityType, log.EntityID, log.Details, log.OldValue, log.NewValue)
	return err
}

// GetActivityLogs returns the owner's most recent activity.
func (c *Core) GetActivityLogs(ctx context.Context, ownerID string, limit, offset int) ([]ActivityLog, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, action, entity_type, entity_id, details, old_value, new_value, created_at
		FROM activity_logs
		WHERE owner_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, ownerID, limit, offset)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to fetch activity logs", err)
	}
	defer rows.Close()

	logs := []ActivityLog{}
	for rows.Next() {
		var log ActivityLog
		var entityID, details, createdAt sql.NullString
		var oldValue, newValue any
		if err := rows.Scan(&log.ID, &log.Action, &log.EntityType, &entityID, &details, &oldValue, &newValue, &createdAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "failed to scan activity log", err)
		}
		log.EntityID = nullableString(entityID)
		log.Details = nullableString(details)
		log.CreatedAt = nullableString(createdAt)
		if log.OldValue, err = scanNullAmount(oldValue); err != nil {
			return nil, WrapError(ErrCodeDatabase, "failed to scan activity log", err)
		}
		if log.NewValue, err = scanNullAmount(newValue); err != nil {
			return nil, WrapError(ErrCodeDatabase, "failed to scan activity log", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
