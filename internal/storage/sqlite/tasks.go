package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sundsoffice-tech/messebau-pm/internal/models"
	"github.com/sundsoffice-tech/messebau-pm/internal/storage"
)

var tasksTable = table{
	name: "tasks",
	keys: []column{
		{"project_id", integerColumn},
	},
	writable: []column{
		{"title", textColumn},
		{"description", textColumn},
		{"status", textColumn},
		{"dueDate", textColumn},
		{"assignee", textColumn},
		{"priority", textColumn},
	},
}

func scanTask(row scanner) (*models.Task, error) {
	t := &models.Task{}
	var title, description, status, dueDate, assignee, priority sql.NullString
	if err := row.Scan(&t.ID, &t.ProjectID, &title, &description, &status,
		&dueDate, &assignee, &priority); err != nil {
		return nil, err
	}
	t.Title = stringPtr(title)
	t.Description = stringPtr(description)
	t.Status = status.String
	t.DueDate = stringPtr(dueDate)
	t.Assignee = stringPtr(assignee)
	t.Priority = stringPtr(priority)
	return t, nil
}

// ListTasks returns all tasks matching filter in insertion order.
func (s *SQLiteStore) ListTasks(ctx context.Context, filter storage.Filter) ([]models.Task, error) {
	return listRows(ctx, s.db, tasksTable, filter, scanTask)
}

// ListTasksByProject returns the tasks of a project.
func (s *SQLiteStore) ListTasksByProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	return listRows(ctx, s.db, tasksTable, storage.Filter{Field: "project_id", Value: projectID}, scanTask)
}

// GetTask retrieves a task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	return getRow(ctx, s.db, tasksTable, id, scanTask)
}

// CreateTask inserts a task under projectID and returns it as stored.
// Returns storage.ErrNotFound if the project does not exist.
func (s *SQLiteStore) CreateTask(ctx context.Context, projectID int64, fields models.Fields) (*models.Task, error) {
	withStatus := make(models.Fields, len(fields)+1)
	for k, v := range fields {
		withStatus[k] = v
	}
	if isFalsy(fields["status"]) {
		withStatus["status"] = models.DefaultTaskStatus
	}

	names, args, err := tasksTable.insertValues(withStatus)
	if err != nil {
		return nil, err
	}
	names = append([]string{"project_id"}, names...)
	args = append([]any{projectID}, args...)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id = ?", projectID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("projects %d: %w", projectID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check project existence: %w", err)
	}

	id, err := insertRow(ctx, tx, tasksTable, names, args)
	if err != nil {
		return nil, err
	}
	task, err := getRow(ctx, tx, tasksTable, id, scanTask)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return task, nil
}

// UpdateTask applies a partial update and returns the stored task.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, fields models.Fields) (*models.Task, error) {
	return updateRow(ctx, s.db, tasksTable, id, fields, scanTask)
}

// DeleteTask removes a task.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteRow(ctx, tx, tasksTable, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isFalsy reports whether a decoded JSON value counts as "not given" for
// defaulting purposes: null, false, zero, the empty string or an empty array or object.
func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case float64:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}
