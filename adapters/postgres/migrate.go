package postgres

import (
	"github.com/jmoiron/sqlx"

	"notelens/internal/errors"
)

// Migrate creates the schema when it does not exist yet. Idempotent;
// safe to run on every startup.
func Migrate(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notebooks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '#3B82F6',
			template_fields JSONB NOT NULL DEFAULT '[]',
			prompt_template_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			notebook_id TEXT NOT NULL REFERENCES notebooks(id) ON DELETE CASCADE,
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			fields JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_notebook_created
			ON notes (notebook_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS chart_instances (
			id TEXT PRIMARY KEY,
			notebook_id TEXT NOT NULL UNIQUE REFERENCES notebooks(id) ON DELETE CASCADE,
			chart_type TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			bindings JSONB NOT NULL DEFAULT '{}',
			run_key TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "schema migration failed")
		}
	}
	return nil
}
