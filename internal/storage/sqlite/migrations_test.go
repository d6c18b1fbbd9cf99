package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sundsoffice-tech/messebau-pm/internal/models"
	"github.com/sundsoffice-tech/messebau-pm/internal/storage"
)

var tableInfoColumns = []string{"cid", "name", "type", "notnull", "dflt_value", "pk"}

func TestAddColumnSkipsExistingColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("PRAGMA table_info(tasks)")).
		WillReturnRows(sqlmock.NewRows(tableInfoColumns).
			AddRow(0, "id", "INTEGER", 0, nil, 1).
			AddRow(1, "assignee", "TEXT", 0, nil, 0))

	if err := addColumn("tasks", "assignee", "TEXT")(context.Background(), db); err != nil {
		t.Fatalf("addColumn: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAddColumnAltersMissingColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("PRAGMA table_info(projects)")).
		WillReturnRows(sqlmock.NewRows(tableInfoColumns).
			AddRow(0, "id", "INTEGER", 0, nil, 1).
			AddRow(1, "name", "TEXT", 1, nil, 0))
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE projects ADD COLUMN customer_id INTEGER")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := addColumn("projects", "customer_id", "INTEGER")(context.Background(), db); err != nil {
		t.Fatalf("addColumn: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunMigrationsNoopWhenCurrent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	versions := sqlmock.NewRows([]string{"version"})
	for _, m := range migrations {
		versions.AddRow(m.version)
	}

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_version").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_version").WillReturnRows(versions)
	mock.ExpectCommit()

	if err := runMigrations(context.Background(), db); err != nil {
		t.Fatalf("runMigrations: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunMigrationsRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_version").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_version").WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS customers").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = runMigrations(context.Background(), db)
	if err == nil {
		t.Fatal("Expected error from failing migration")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMigrationVersionsAreSequential(t *testing.T) {
	for i, m := range migrations {
		if m.version != i+1 {
			t.Errorf("migration %q has version %d, want %d", m.name, m.version, i+1)
		}
	}
}

// legacySchema is the layout of stores created before customers were linked
// to projects and before tasks had assignee and priority.
const legacySchema = `
CREATE TABLE projects (
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
);
CREATE TABLE tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'ToDo',
    dueDate TEXT,
    FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
);
INSERT INTO projects (name, customer, fair, size) VALUES ('Messe Alt', 'Altkunde', 'IFA', 40);
INSERT INTO projects (name, customer, size) VALUES ('Messe Frei', 'Altkunde', 'ca. 30');
INSERT INTO tasks (project_id, title, status) VALUES (1, 'Stand planen', 'Done');
`

func TestLegacyStoreUpgrade(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	raw, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	if _, err := raw.Exec(legacySchema); err != nil {
		t.Fatalf("create legacy schema: %v", err)
	}
	raw.Close()

	ctx := context.Background()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New on legacy store: %v", err)
	}

	t.Run("existing rows survive with new columns null", func(t *testing.T) {
		p, err := store.GetProject(ctx, 1)
		if err != nil {
			t.Fatalf("GetProject failed: %v", err)
		}
		if strOf(p.Name) != "Messe Alt" || p.Size == nil || p.Size.Number != 40 {
			t.Errorf("Unexpected project after upgrade: %+v", p)
		}
		if p.CustomerID != nil {
			t.Errorf("Expected null customer_id, got %d", *p.CustomerID)
		}

		task, err := store.GetTask(ctx, 1)
		if err != nil {
			t.Fatalf("GetTask failed: %v", err)
		}
		if task.Status != "Done" || task.Assignee != nil || task.Priority != nil {
			t.Errorf("Unexpected task after upgrade: %+v", task)
		}
	})

	t.Run("free-text size is kept", func(t *testing.T) {
		projects, err := store.ListProjects(ctx, storage.Filter{})
		if err != nil {
			t.Fatalf("ListProjects failed: %v", err)
		}
		if len(projects) != 2 {
			t.Fatalf("Expected 2 projects, got %d", len(projects))
		}

		size := projects[1].Size
		if size == nil || size.Text == nil || *size.Text != "ca. 30" {
			t.Fatalf("Expected text size \"ca. 30\", got %+v", size)
		}
		body, err := json.Marshal(projects[1])
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !strings.Contains(string(body), `"size":"ca. 30"`) {
			t.Errorf("Unexpected JSON: %s", body)
		}
	})

	t.Run("new columns are writable", func(t *testing.T) {
		task, err := store.UpdateTask(ctx, 1, models.Fields{"assignee": "Jana", "priority": "hoch"})
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if strOf(task.Assignee) != "Jana" || strOf(task.Priority) != "hoch" {
			t.Errorf("Unexpected task: %+v", task)
		}
	})

	t.Run("customers table was created", func(t *testing.T) {
		c := mustCustomer(t, store, "Neukunde")
		if c.ID != 1 {
			t.Errorf("Expected first customer ID 1, got %d", c.ID)
		}
	})

	store.Close()

	t.Run("reopening is a no-op", func(t *testing.T) {
		again, err := New(dbPath)
		if err != nil {
			t.Fatalf("second New failed: %v", err)
		}
		defer again.Close()

		var count int
		if err := again.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
			t.Fatalf("count versions: %v", err)
		}
		if count != len(migrations) {
			t.Errorf("Expected %d recorded versions, got %d", len(migrations), count)
		}

		task, err := again.GetTask(ctx, 1)
		if err != nil {
			t.Fatalf("GetTask failed: %v", err)
		}
		if strOf(task.Assignee) != "Jana" {
			t.Errorf("Data lost on reopen: %+v", task)
		}
	})
}

func TestNewFailsOnUnwritableLocation(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	// The parent "directory" is a regular file, so it cannot be created.
	if _, err := New(filepath.Join(blocker, "data.db")); err == nil {
		t.Error("Expected error when the parent path is a file")
	}
}
