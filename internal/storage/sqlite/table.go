package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sundsoffice-tech/messebau-pm/internal/models"
	"github.com/sundsoffice-tech/messebau-pm/internal/storage"
)

type columnKind int

const (
	textColumn columnKind = iota
	numberColumn
	integerColumn
)

type column struct {
	name string
	kind columnKind
}

// table describes one entity table. writable is both the insert column list
// and the update allow-list; keys are read-only columns that may still be
// used in filters. SQL identifiers are only ever taken from these
// declarations, never from request input.
type table struct {
	name     string
	keys     []column
	writable []column
}

// selectList returns the column list in scan order: id, keys, writable.
func (t table) selectList() string {
	names := []string{"id"}
	for _, c := range t.keys {
		names = append(names, c.name)
	}
	for _, c := range t.writable {
		names = append(names, c.name)
	}
	return strings.Join(names, ", ")
}

func (t table) lookup(name string) (column, bool) {
	if name == "id" {
		return column{name: "id", kind: integerColumn}, true
	}
	for _, c := range t.keys {
		if c.name == name {
			return c, true
		}
	}
	for _, c := range t.writable {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

// assignments returns "col = ?" fragments and bound values for every
// writable column present in fields, in declaration order.
func (t table) assignments(fields models.Fields) ([]string, []any, error) {
	var sets []string
	var args []any
	for _, c := range t.writable {
		v, ok := fields[c.name]
		if !ok {
			continue
		}
		bound, err := c.bind(v)
		if err != nil {
			return nil, nil, err
		}
		sets = append(sets, c.name+" = ?")
		args = append(args, bound)
	}
	return sets, args, nil
}

// insertValues binds every writable column, using NULL for absent fields.
func (t table) insertValues(fields models.Fields) ([]string, []any, error) {
	names := make([]string, 0, len(t.writable))
	args := make([]any, 0, len(t.writable))
	for _, c := range t.writable {
		bound, err := c.bind(fields[c.name])
		if err != nil {
			return nil, nil, err
		}
		names = append(names, c.name)
		args = append(args, bound)
	}
	return names, args, nil
}

// bind converts a decoded JSON value into a driver value for the column.
func (c column) bind(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch c.kind {
	case textColumn:
		return c.bindText(v)
	case numberColumn:
		return c.bindNumber(v)
	default:
		return c.bindInteger(v)
	}
}

func (c column) bindText(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	}
	return nil, c.invalid(v)
}

func (c column) bindNumber(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f, nil
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, nil
		}
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return nil, c.invalid(v)
}

func (c column) bindInteger(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		if f, err := x.Float64(); err == nil {
			return c.integral(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return n, nil
		}
	case float64:
		return c.integral(x)
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	}
	return nil, c.invalid(v)
}

func (c column) integral(f float64) (any, error) {
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return nil, c.invalid(f)
	}
	return int64(f), nil
}

func (c column) invalid(v any) error {
	return fmt.Errorf("%w: %s cannot hold %v", storage.ErrInvalidField, c.name, v)
}

// whereClause builds the WHERE fragment for a single equality filter.
func (t table) whereClause(filter storage.Filter) (string, []any, error) {
	if filter.IsZero() {
		return "", nil, nil
	}
	c, ok := t.lookup(filter.Field)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s has no column %q", storage.ErrInvalidField, t.name, filter.Field)
	}
	bound, err := c.bind(filter.Value)
	if err != nil {
		return "", nil, err
	}
	if bound == nil {
		return " WHERE " + c.name + " IS NULL", nil, nil
	}
	return " WHERE " + c.name + " = ?", []any{bound}, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getRow reads one record by id. Returns storage.ErrNotFound if missing.
func getRow[T any](ctx context.Context, q queryer, t table, id int64, scan func(scanner) (*T, error)) (*T, error) {
	row := q.QueryRowContext(ctx, "SELECT "+t.selectList()+" FROM "+t.name+" WHERE id = ?", id)
	rec, err := scan(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s %d: %w", t.name, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", t.name, err)
	}
	return rec, nil
}

// listRows reads every record matching filter in insertion order.
func listRows[T any](ctx context.Context, q queryer, t table, filter storage.Filter, scan func(scanner) (*T, error)) ([]T, error) {
	where, args, err := t.whereClause(filter)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, "SELECT "+t.selectList()+" FROM "+t.name+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.name, err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", t.name, err)
	}
	return out, nil
}

// insertRow inserts the given columns and returns the assigned id.
func insertRow(ctx context.Context, tx *sql.Tx, t table, names []string, args []any) (int64, error) {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?%s)",
		t.name, strings.Join(names, ", "), repeatPlaceholder(len(names)-1))

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", t.name, classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read %s id: %w", t.name, err)
	}
	return id, nil
}

// updateRow applies the allow-listed fields to row id and returns the record
// as stored afterwards. An empty effective field set only checks existence.
func updateRow[T any](ctx context.Context, db *sql.DB, t table, id int64, fields models.Fields, scan func(scanner) (*T, error)) (*T, error) {
	sets, args, err := t.assignments(fields)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(sets) > 0 {
		args = append(args, id)
		_, err := tx.ExecContext(ctx,
			"UPDATE "+t.name+" SET "+strings.Join(sets, ", ")+" WHERE id = ?",
			args...,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update %s: %w", t.name, classify(err))
		}
	}

	rec, err := getRow(ctx, tx, t, id, scan)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rec, nil
}

// deleteRow removes row id. Returns storage.ErrNotFound if nothing was removed.
func deleteRow(ctx context.Context, tx *sql.Tx, t table, id int64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM "+t.name+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t.name, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", t.name, id, storage.ErrNotFound)
	}
	return nil
}

// repeatPlaceholder returns a string of ", ?" repeated n times.
// Used for building VALUES lists with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(", ?", n)
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	n := ni.Int64
	return &n
}
