// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/sundsoffice-tech/messebau-pm/internal/models"
)

var (
	// ErrNotFound is returned when no row has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrConstraint wraps a constraint the store refused, such as a missing
	// required column or a task pointing at a project that does not exist.
	ErrConstraint = errors.New("constraint violation")

	// ErrInvalidField is returned for a value that cannot be stored in its
	// column, or for a filter on an unknown column.
	ErrInvalidField = errors.New("invalid field")
)

// Filter restricts a list query to rows whose Field equals Value.
// The zero Filter matches every row.
type Filter struct {
	Field string
	Value any
}

// IsZero reports whether the filter matches every row.
func (f Filter) IsZero() bool {
	return f.Field == ""
}

// Store defines the interface for customer, project and task storage.
// This abstraction allows swapping storage backends without changing the
// HTTP layer.
//
// List operations return records in insertion order and an empty slice when
// nothing matches. Create and update return the record as read back from the
// store. Update and create only honour allow-listed fields; unknown keys are
// ignored.
type Store interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	CreateCustomer(ctx context.Context, fields models.Fields) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, fields models.Fields) (*models.Customer, error)

	// DeleteCustomer removes the customer together with its projects and
	// their tasks. Returns ErrNotFound if no customer was removed.
	DeleteCustomer(ctx context.Context, id int64) error

	ListProjects(ctx context.Context, filter Filter) ([]models.Project, error)

	// ListProjectsByCustomer returns the projects linked to customerID. It does
	// not check that the customer exists.
	ListProjectsByCustomer(ctx context.Context, customerID int64) ([]models.Project, error)

	GetProject(ctx context.Context, id int64) (*models.Project, error)
	CreateProject(ctx context.Context, fields models.Fields) (*models.Project, error)
	UpdateProject(ctx context.Context, id int64, fields models.Fields) (*models.Project, error)

	// DeleteProject removes the project and its tasks.
	DeleteProject(ctx context.Context, id int64) error

	ListTasks(ctx context.Context, filter Filter) ([]models.Task, error)
	ListTasksByProject(ctx context.Context, projectID int64) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)

	// CreateTask inserts a task under projectID. The status defaults to
	// models.DefaultTaskStatus when absent or falsy.
	CreateTask(ctx context.Context, projectID int64, fields models.Fields) (*models.Task, error)

	UpdateTask(ctx context.Context, id int64, fields models.Fields) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
