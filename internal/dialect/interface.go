package dialect

import "ctxsync/internal/config"

// Dialect abstracts database-specific introspection and query generation.
type Dialect interface {
	// Name is the config type string and the type= folder name.
	Name() string
	// DriverName is the database/sql driver registered for this dialect.
	DriverName() string
	// DSN builds the driver connection string. An explicit dsn in config wins.
	DSN(db config.Database) (string, error)

	// Metadata Queries (Schema Introspection)

	// SchemaQueries is an ordered fallback chain. Each query returns one
	// column of schema names; the first one that succeeds with a non-empty
	// result is used.
	SchemaQueries() []string
	TablesQuery(schema string) (string, []any)
	// ColumnsQuery returns rows of (column name, data type, is_nullable YES/NO).
	ColumnsQuery(schema, table string) (string, []any)

	// Query Generation
	QuoteIdent(name string) string
	QualifiedName(schema, table string) string
	Placeholder(index int) string // Returns ?, $1, @p1, etc.
	LimitQuery(query string, limit int) string

	// Helpers
	NormalizeType(sqlType string) string
}
