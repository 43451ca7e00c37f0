package nlquery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaUnavailable wraps any failure to introspect the connected
// database. Callers check it with errors.Is; it is fatal to the fallback
// path but never touched by rule resolution.
var ErrSchemaUnavailable = errors.New("schema unavailable")

// Column is one column of an introspected table.
type Column struct {
	Name string
	Type string
}

// Table is one introspected table with its columns in declared order.
type Table struct {
	Name    string
	Columns []Column
}

// SchemaDescription lists the public tables of the connected database.
// It is produced fresh per request and rendered to text for prompt
// embedding.
type SchemaDescription []Table

// String renders the schema in the plain-text form embedded into
// generation prompts.
func (s SchemaDescription) String() string {
	var b strings.Builder
	for _, t := range s {
		fmt.Fprintf(&b, "\nTable: %s\n", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  - %s (%s)\n", c.Name, c.Type)
		}
	}
	return b.String()
}

const (
	listTablesSQL = `SELECT table_name FROM information_schema.tables
WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
ORDER BY table_name`

	listColumnsSQL = `SELECT column_name, data_type FROM information_schema.columns
WHERE table_schema = 'public' AND table_name = $1
ORDER BY ordinal_position`
)

// DescribeSchema enumerates all public tables and their columns with
// declared types, preserving the database's column ordering.
func DescribeSchema(ctx context.Context, db *sql.DB) (SchemaDescription, error) {
	rows, err := db.QueryContext(ctx, listTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tables: %v", ErrSchemaUnavailable, err)
	}
	defer rows.Close()

	var schema SchemaDescription
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scanning table name: %v", ErrSchemaUnavailable, err)
		}
		schema = append(schema, Table{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading tables: %v", ErrSchemaUnavailable, err)
	}

	for i := range schema {
		cols, err := describeColumns(ctx, db, schema[i].Name)
		if err != nil {
			return nil, err
		}
		schema[i].Columns = cols
	}
	return schema, nil
}

func describeColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, listColumnsSQL, table)
	if err != nil {
		return nil, fmt.Errorf("%w: describing %s: %v", ErrSchemaUnavailable, table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("%w: scanning %s column: %v", ErrSchemaUnavailable, table, err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s columns: %v", ErrSchemaUnavailable, table, err)
	}
	return cols, nil
}
