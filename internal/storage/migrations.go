package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version the application
// expects. Failing to migrate to it is fatal.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Classified supplier history and budget tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS classified_suppliers (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					supplier_name TEXT NOT NULL,
					avg_lead_time REAL NOT NULL,
					std_lead_time REAL NOT NULL,
					recurrence INTEGER NOT NULL,
					total_spent REAL NOT NULL,
					total_products_value REAL NOT NULL,
					total_discount REAL NOT NULL,
					discount_rate REAL NOT NULL,
					avg_item_price REAL NOT NULL,
					score REAL NOT NULL,
					rating INTEGER NOT NULL,
					classification TEXT NOT NULL,
					executed_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_classified_suppliers_executed_at
					ON classified_suppliers(executed_at)`,
				`CREATE INDEX idx_classified_suppliers_name
					ON classified_suppliers(supplier_name)`,

				`CREATE TABLE IF NOT EXISTS budgets (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					supplier_name TEXT NOT NULL,
					supplier_tax_id TEXT,
					supplier_phone TEXT,
					total_value REAL NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS budget_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					budget_id INTEGER NOT NULL,
					product_code TEXT NOT NULL,
					base_price REAL NOT NULL,
					recurrence INTEGER NOT NULL,
					FOREIGN KEY (budget_id) REFERENCES budgets(id)
				)`,
				`CREATE INDEX idx_budget_items_budget_id
					ON budget_items(budget_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Registry lookup cache",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS registry_cache (
					tax_id TEXT PRIMARY KEY,
					legal_name TEXT,
					municipality TEXT,
					region TEXT,
					phone_1 TEXT,
					phone_2 TEXT,
					fax TEXT,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Wizard session log",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_query TEXT,
					status TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)
			`)
			return err
		},
	},
}

// Migrate brings the schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_versions table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_versions`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_versions (version) VALUES (?)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("applied migration", "version", m.Version, "description", m.Description)
	}

	return nil
}
