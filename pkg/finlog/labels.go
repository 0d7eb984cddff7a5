package finlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func labelTable(kind LabelKind) (string, error) {
	table, ok := labelTables[kind]
	if !ok {
		return "", NewError(ErrCodeInvalidInput, fmt.Sprintf("unknown label kind: %s", kind))
	}
	return table, nil
}

// AddLabel creates a label and returns it. Adding an existing name returns
// a DUPLICATE error.
func (c *Core) AddLabel(ctx context.Context, ownerID string, kind LabelKind, name string) (*Label, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	table, err := labelTable(kind)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("%s name required", kind)
	}

	var exists int
	err = c.db.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE owner_id = ? AND name = ?", table), ownerID, name).Scan(&exists)
	if err == nil {
		return nil, NewError(ErrCodeDuplicate, fmt.Sprintf("%s already exists: %s", kind, name))
	}
	if err != sql.ErrNoRows {
		return nil, WrapError(ErrCodeDatabase, "failed to check label", err)
	}

	id := uuid.NewString()
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (id, owner_id, name) VALUES (?, ?, ?)", table), id, ownerID, name); err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to add label", err)
	}
	return &Label{ID: id, Name: name}, nil
}

// GetLabels returns the owner's labels of kind ordered by name.
func (c *Core) GetLabels(ctx context.Context, ownerID string, kind LabelKind) ([]Label, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	table, err := labelTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("SELECT id, name, created_at FROM %s WHERE owner_id = ? ORDER BY name", table), ownerID)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "failed to fetch labels", err)
	}
	defer rows.Close()

	labels := []Label{}
	for rows.Next() {
		var l Label
		var createdAt sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &createdAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "failed to scan label", err)
		}
		if createdAt.Valid {
			l.CreatedAt = &createdAt.String
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// DeleteLabel removes a label. Entries and goals keep existing with the
// label cleared; tag links are dropped.
func (c *Core) DeleteLabel(ctx context.Context, ownerID string, kind LabelKind, id string) (bool, error) {
	if err := requireOwner(ownerID); err != nil {
		return false, err
	}
	table, err := labelTable(kind)
	if err != nil {
		return false, err
	}
	deleted := false
	err = c.WithTx(ctx, func(tx *sql.Tx) error {
		switch kind {
		case LabelCategory:
			if _, err := tx.Exec("UPDATE entries SET category_id = NULL WHERE owner_id = ? AND category_id = ?", ownerID, id); err != nil {
				return err
			}
			if _, err := tx.Exec("UPDATE goals SET category_id = NULL WHERE owner_id = ? AND category_id = ?", ownerID, id); err != nil {
				return err
			}
		case LabelSource:
			if _, err := tx.Exec("UPDATE entries SET source_id = NULL WHERE owner_id = ? AND source_id = ?", ownerID, id); err != nil {
				return err
			}
		case LabelTag:
			if _, err := tx.Exec("DELETE FROM entry_tags WHERE tag_id = ?", id); err != nil {
				return err
			}
		}
		result, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE owner_id = ? AND id = ?", table), ownerID, id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		deleted = affected > 0
		return nil
	})
	if err != nil {
		return false, dbError("failed to delete label", err)
	}
	return deleted, nil
}

// ensureLabelTx returns the ID of the named label, creating it when missing.
// A nil or blank name yields nil.
func ensureLabelTx(tx *sql.Tx, ownerID string, kind LabelKind, name *string) (*string, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return nil, nil
	}
	table := labelTables[kind]
	trimmed := strings.TrimSpace(*name)
	var id string
	err := tx.QueryRow(fmt.Sprintf("SELECT id FROM %s WHERE owner_id = ? AND name = ?", table), ownerID, trimmed).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	id = uuid.NewString()
	if _, err := tx.Exec(fmt.Sprintf("INSERT INTO %s (id, owner_id, name) VALUES (?, ?, ?)", table), id, ownerID, trimmed); err != nil {
		return nil, err
	}
	return &id, nil
}

func setEntryTagsTx(tx *sql.Tx, ownerID, entryID string, tags []string) error {
	if _, err := tx.Exec("DELETE FROM entry_tags WHERE entry_id = ?", entryID); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tagID, err := ensureLabelTx(tx, ownerID, LabelTag, &tag)
		if err != nil {
			return err
		}
		if _, err := tx.Exec("INSERT OR IGNORE INTO entry_tags (entry_id, tag_id) VALUES (?, ?)", entryID, *tagID); err != nil {
			return err
		}
	}
	return nil
}
