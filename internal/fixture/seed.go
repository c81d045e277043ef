// Package fixture creates and fills throwaway tables with fake data. It backs
// the tests that run the sync against a real SQLite database.
package fixture

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ctxsync/internal/dialect"
)

// Create issues CREATE TABLE for t in schema.
func Create(ctx context.Context, db *sql.DB, d dialect.Dialect, schema string, t Table) error {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		def := d.QuoteIdent(c.Name) + " " + c.Type
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	q := fmt.Sprintf("CREATE TABLE %s (%s)", d.QualifiedName(schema, t.Name), strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.Name, err)
	}
	return nil
}

// Fill inserts count generated rows into t inside one transaction and
// returns how many were inserted. onProgress, if set, runs after each row.
func Fill(ctx context.Context, db *sql.DB, d dialect.Dialect, schema string, t Table, g *Generator, count int, onProgress func()) (int, error) {
	names := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = d.QuoteIdent(c.Name)
		marks[i] = d.Placeholder(i)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QualifiedName(schema, t.Name), strings.Join(names, ", "), strings.Join(marks, ", "))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	inserted := 0
	for inserted < count {
		values := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			values[i] = g.Value(c)
		}
		if _, err := tx.ExecContext(ctx, query, values...); err != nil {
			tx.Rollback()
			return inserted, fmt.Errorf("failed to insert into %s: %w", t.Name, err)
		}
		inserted++
		if onProgress != nil {
			onProgress()
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", t.Name, err)
	}
	return inserted, nil
}

// Seed creates every table and fills each with rows rows.
func Seed(ctx context.Context, db *sql.DB, d dialect.Dialect, schema string, tables []Table, g *Generator, rows int) error {
	for _, t := range tables {
		if err := Create(ctx, db, d, schema, t); err != nil {
			return err
		}
		if _, err := Fill(ctx, db, d, schema, t, g, rows, nil); err != nil {
			return err
		}
	}
	return nil
}

// Users is a small table with every column family the accessors care about.
var Users = Table{
	Name: "users",
	Columns: []Column{
		{Name: "id", Type: "INTEGER"},
		{Name: "email", Type: "VARCHAR(120)"},
		{Name: "name", Type: "TEXT", Nullable: true},
		{Name: "balance", Type: "REAL", Nullable: true},
		{Name: "created_at", Type: "DATETIME"},
	},
}

// Orders references Users by convention only.
var Orders = Table{
	Name: "orders",
	Columns: []Column{
		{Name: "id", Type: "INTEGER"},
		{Name: "user_id", Type: "INTEGER"},
		{Name: "amount", Type: "DECIMAL(10,2)"},
		{Name: "description", Type: "TEXT", Nullable: true},
	},
}
