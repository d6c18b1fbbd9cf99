package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// execQuerier is the subset of *sql.DB and *sql.Tx the migrations need.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// migration is one additive schema step. Every apply func must be safe to run
// against a store that already has the change, because stores created before
// schema_version existed replay the whole list.
type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, db execQuerier) error
}

// migrations is the ordered list of schema steps.
// IMPORTANT: projects must exist before tasks due to the foreign key.
var migrations = []migration{
	{1, "create customers", execStatement(`
CREATE TABLE IF NOT EXISTS customers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    contact_person TEXT,
    email TEXT,
    phone TEXT,
    address TEXT,
    design_note TEXT
)`)},
	{2, "create projects", execStatement(`
CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    customer TEXT NOT NULL,
    fair TEXT,
    size INTEGER,
    date TEXT,
    priority TEXT,
    status TEXT,
    nextStep TEXT,
    dueDate TEXT
)`)},
	// No REFERENCES clause: customer_id is not validated, and the customer
	// cascade is done by DeleteCustomer.
	{3, "add projects.customer_id", addColumn("projects", "customer_id", "INTEGER")},
	{4, "create tasks", execStatement(`
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'ToDo',
    dueDate TEXT,
    assignee TEXT,
    priority TEXT,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
)`)},
	{5, "add tasks.assignee", addColumn("tasks", "assignee", "TEXT")},
	{6, "add tasks.priority", addColumn("tasks", "priority", "TEXT")},
	{7, "create indexes", execStatement(`
CREATE INDEX IF NOT EXISTS idx_projects_customer_id ON projects(customer_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`)},
}

const createVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`

// runMigrations applies every migration not yet recorded in schema_version,
// all inside one transaction.
func runMigrations(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	applied, err := appliedVersions(ctx, tx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := m.apply(ctx, tx); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
			m.version, time.Now().Unix(),
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, db execQuerier) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan schema version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schema versions: %w", err)
	}
	return applied, nil
}

func execStatement(stmt string) func(context.Context, execQuerier) error {
	return func(ctx context.Context, db execQuerier) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	}
}

// addColumn adds table.column with the given type unless it already exists.
// Existing rows get NULL in the new column.
func addColumn(table, column, typ string) func(context.Context, execQuerier) error {
	return func(ctx context.Context, db execQuerier) error {
		exists, err := columnExists(ctx, db, table, column)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		_, err = db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typ))
		return err
	}
}

// columnExists consults PRAGMA table_info. Table names come from the
// migration list only.
func columnExists(ctx context.Context, db execQuerier, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("failed to scan %s columns: %w", table, err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("failed to iterate %s columns: %w", table, err)
	}
	return found, nil
}
