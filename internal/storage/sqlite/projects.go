package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/sundsoffice-tech/messebau-pm/internal/models"
	"github.com/sundsoffice-tech/messebau-pm/internal/storage"
)

var projectsTable = table{
	name: "projects",
	writable: []column{
		{"name", textColumn},
		{"customer", textColumn},
		{"fair", textColumn},
		{"size", numberColumn},
		{"date", textColumn},
		{"priority", textColumn},
		{"status", textColumn},
		{"nextStep", textColumn},
		{"dueDate", textColumn},
		{"customer_id", integerColumn},
	},
}

func scanProject(row scanner) (*models.Project, error) {
	p := &models.Project{}
	var (
		name, customer, fair, date, priority, status, nextStep, dueDate sql.NullString
		size                                                            any
		customerID                                                      sql.NullInt64
	)
	if err := row.Scan(&p.ID, &name, &customer, &fair, &size, &date,
		&priority, &status, &nextStep, &dueDate, &customerID); err != nil {
		return nil, err
	}
	p.Name = stringPtr(name)
	p.Customer = stringPtr(customer)
	p.Fair = stringPtr(fair)
	p.Size = sizeValue(size)
	p.Date = stringPtr(date)
	p.Priority = stringPtr(priority)
	p.Status = stringPtr(status)
	p.NextStep = stringPtr(nextStep)
	p.DueDate = stringPtr(dueDate)
	p.CustomerID = int64Ptr(customerID)
	return p, nil
}

// sizeValue maps a raw size column value. Numbers and numeric text become a
// number; other text, written by older clients, is kept as is.
func sizeValue(v any) *models.Size {
	switch x := v.(type) {
	case int64:
		return models.NumberSize(float64(x))
	case float64:
		return models.NumberSize(x)
	case []byte:
		return textSize(string(x))
	case string:
		return textSize(x)
	}
	return nil
}

func textSize(s string) *models.Size {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return models.NumberSize(f)
	}
	return &models.Size{Text: &s}
}

// ListProjects returns all projects matching filter in insertion order.
func (s *SQLiteStore) ListProjects(ctx context.Context, filter storage.Filter) ([]models.Project, error) {
	return listRows(ctx, s.db, projectsTable, filter, scanProject)
}

// ListProjectsByCustomer returns the projects linked to a customer.
func (s *SQLiteStore) ListProjectsByCustomer(ctx context.Context, customerID int64) ([]models.Project, error) {
	return listRows(ctx, s.db, projectsTable, storage.Filter{Field: "customer_id", Value: customerID}, scanProject)
}

// GetProject retrieves a project by ID.
func (s *SQLiteStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	return getRow(ctx, s.db, projectsTable, id, scanProject)
}

// CreateProject inserts a project and returns it as stored. customer_id is
// stored as given, without checking that the customer exists.
func (s *SQLiteStore) CreateProject(ctx context.Context, fields models.Fields) (*models.Project, error) {
	names, args, err := projectsTable.insertValues(fields)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := insertRow(ctx, tx, projectsTable, names, args)
	if err != nil {
		return nil, err
	}
	project, err := getRow(ctx, tx, projectsTable, id, scanProject)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return project, nil
}

// UpdateProject applies a partial update and returns the stored project.
func (s *SQLiteStore) UpdateProject(ctx context.Context, id int64, fields models.Fields) (*models.Project, error) {
	return updateRow(ctx, s.db, projectsTable, id, fields, scanProject)
}

// DeleteProject removes a project; its tasks cascade.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteRow(ctx, tx, projectsTable, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
