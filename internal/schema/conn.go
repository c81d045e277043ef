package schema

import (
	"context"
	"database/sql"
	"fmt"

	"ctxsync/internal/dialect"

	"go.uber.org/multierr"
)

// Conn is a live connection to one database, introspected through its dialect.
type Conn struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// Open connects with the dialect's driver and verifies the connection.
func Open(ctx context.Context, d dialect.Dialect, dsn string) (*Conn, error) {
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", d.Name(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", d.Name(), err)
	}
	return &Conn{db: db, dialect: d}, nil
}

// New wraps an already opened handle.
func New(db *sql.DB, d dialect.Dialect) *Conn {
	return &Conn{db: db, dialect: d}
}

func (c *Conn) Dialect() dialect.Dialect { return c.dialect }

// DB exposes the underlying handle.
func (c *Conn) DB() *sql.DB { return c.db }

func (c *Conn) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Conn) Close() error {
	return c.db.Close()
}

// ListSchemas walks the dialect's schema queries in order and returns the
// first non-empty answer. A query that fails falls through to the next one.
func (c *Conn) ListSchemas(ctx context.Context) ([]string, error) {
	var errs error
	for _, q := range c.dialect.SchemaQueries() {
		names, err := c.queryNames(ctx, q)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if len(names) > 0 {
			return names, nil
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", errs)
	}
	return nil, nil
}

// ListTables returns the tables and views of schema, sorted by the catalog.
func (c *Conn) ListTables(ctx context.Context, schema string) ([]string, error) {
	q, args := c.dialect.TablesQuery(schema)
	names, err := c.queryNames(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", schema, err)
	}
	return names, nil
}

// Table returns a handle; nothing is queried until one of its methods runs.
func (c *Conn) Table(schema, name string) *Table {
	return &Table{conn: c, Schema: schema, Name: name}
}

func (c *Conn) queryNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		if name.Valid && name.String != "" {
			names = append(names, name.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating names: %w", err)
	}
	return names, nil
}
