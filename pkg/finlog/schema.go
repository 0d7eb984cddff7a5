package finlog

import (
	"database/sql"
	"fmt"
)

func initDatabase(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, kind := range LabelKinds {
		table := labelTables[kind]
		if err := exec(tx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				name TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(owner_id, name)
			)
		`, table)); err != nil {
			return err
		}
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			entry_date TEXT NOT NULL,
			entry_type TEXT NOT NULL CHECK(entry_type IN ('profit', 'loss', 'fee', 'tax', 'transfer')),
			amount_usd REAL NOT NULL CHECK(amount_usd >= 0),
			category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
			source_id TEXT REFERENCES sources(id) ON DELETE SET NULL,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS entry_tags (
			entry_id TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
			tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (entry_id, tag_id)
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			timeframe TEXT NOT NULL CHECK(timeframe IN ('year', 'quarter', 'month', 'week', 'day')),
			target_type TEXT NOT NULL CHECK(target_type IN ('income', 'net', 'portfolio_growth')),
			target_value_usd REAL NOT NULL CHECK(target_value_usd > 0),
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS portfolio_snapshots (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			snapshot_date TEXT NOT NULL,
			total_value_usd REAL NOT NULL,
			source TEXT NOT NULL DEFAULT 'manual',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(owner_id, snapshot_date)
		)
	`); err != nil {
		return err
	}
	hasSource, err := tableHasColumn(tx, "portfolio_snapshots", "source")
	if err != nil {
		return err
	}
	if !hasSource {
		if err := exec(tx, "ALTER TABLE portfolio_snapshots ADD COLUMN source TEXT NOT NULL DEFAULT 'manual'"); err != nil {
			return err
		}
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS activity_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id TEXT NOT NULL,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			details TEXT,
			old_value REAL,
			new_value REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_entries_owner_date ON entries(owner_id, entry_date)",
		"CREATE INDEX IF NOT EXISTS idx_entries_category ON entries(category_id)",
		"CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source_id)",
		"CREATE INDEX IF NOT EXISTS idx_entry_tags_tag ON entry_tags(tag_id)",
		"CREATE INDEX IF NOT EXISTS idx_goals_owner ON goals(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_activity_owner ON activity_logs(owner_id, created_at)",
	}
	for _, idx := range indexes {
		if err := exec(tx, idx); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func exec(tx *sql.Tx, query string) error {
	_, err := tx.Exec(query)
	return err
}

func tableExists(tx *sql.Tx, table string) (bool, error) {
	var name string
	err := tx.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func tableHasColumn(tx *sql.Tx, table, column string) (bool, error) {
	exists, err := tableExists(tx, table)
	if err != nil || !exists {
		return false, err
	}
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
