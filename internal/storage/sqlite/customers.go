package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sundsoffice-tech/messebau-pm/internal/models"
	"github.com/sundsoffice-tech/messebau-pm/internal/storage"
)

var customersTable = table{
	name: "customers",
	writable: []column{
		{"name", textColumn},
		{"contact_person", textColumn},
		{"email", textColumn},
		{"phone", textColumn},
		{"address", textColumn},
		{"design_note", textColumn},
	},
}

func scanCustomer(row scanner) (*models.Customer, error) {
	c := &models.Customer{}
	var name, contact, email, phone, address, note sql.NullString
	if err := row.Scan(&c.ID, &name, &contact, &email, &phone, &address, &note); err != nil {
		return nil, err
	}
	c.Name = stringPtr(name)
	c.ContactPerson = stringPtr(contact)
	c.Email = stringPtr(email)
	c.Phone = stringPtr(phone)
	c.Address = stringPtr(address)
	c.DesignNote = stringPtr(note)
	return c, nil
}

// ListCustomers returns all customers in insertion order.
func (s *SQLiteStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return listRows(ctx, s.db, customersTable, storage.Filter{}, scanCustomer)
}

// GetCustomer retrieves a customer by ID.
func (s *SQLiteStore) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return getRow(ctx, s.db, customersTable, id, scanCustomer)
}

// CreateCustomer inserts a customer and returns it as stored.
func (s *SQLiteStore) CreateCustomer(ctx context.Context, fields models.Fields) (*models.Customer, error) {
	names, args, err := customersTable.insertValues(fields)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := insertRow(ctx, tx, customersTable, names, args)
	if err != nil {
		return nil, err
	}
	customer, err := getRow(ctx, tx, customersTable, id, scanCustomer)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return customer, nil
}

// UpdateCustomer applies a partial update and returns the stored customer.
func (s *SQLiteStore) UpdateCustomer(ctx context.Context, id int64, fields models.Fields) (*models.Customer, error) {
	return updateRow(ctx, s.db, customersTable, id, fields, scanCustomer)
}

// DeleteCustomer removes a customer and its projects. The projects' tasks go
// with them through the tasks foreign key.
func (s *SQLiteStore) DeleteCustomer(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// projects.customer_id carries no foreign key (it was added to existing
	// stores later), so the cascade is done here.
	if _, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE customer_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete projects of customer: %w", classify(err))
	}
	if err := deleteRow(ctx, tx, customersTable, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
