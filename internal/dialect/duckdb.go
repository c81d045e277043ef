package dialect

import (
	"net/url"

	"ctxsync/internal/config"

	_ "github.com/marcboeker/go-duckdb/v2" // DuckDB Driver
)

// DuckDBDialect reads a local DuckDB file. Its information_schema follows
// PostgreSQL, scoped to the current catalog since attached databases share it.
type DuckDBDialect struct {
	PostgresDialect
}

func (d *DuckDBDialect) Name() string       { return "duckdb" }
func (d *DuckDBDialect) DriverName() string { return "duckdb" }

// DSN is the file path; an empty DSN opens an in-memory database.
func (d *DuckDBDialect) DSN(db config.Database) (string, error) {
	if db.DSN != "" {
		return db.DSN, nil
	}
	path := db.Path
	if path == ":memory:" {
		path = ""
	}
	if len(db.Params) > 0 {
		q := url.Values{}
		for k, v := range db.Params {
			q.Set(k, v)
		}
		path += "?" + q.Encode()
	}
	return path, nil
}

func (d *DuckDBDialect) SchemaQueries() []string {
	return []string{`SELECT schema_name FROM information_schema.schemata
WHERE catalog_name = current_database()
  AND schema_name NOT IN ('information_schema', 'pg_catalog')
ORDER BY schema_name`}
}

func (d *DuckDBDialect) TablesQuery(schema string) (string, []any) {
	return `SELECT table_name FROM information_schema.tables
WHERE table_catalog = current_database() AND table_schema = $1
  AND table_type IN ('BASE TABLE', 'VIEW')
ORDER BY table_name`, []any{schema}
}

func (d *DuckDBDialect) ColumnsQuery(schema, table string) (string, []any) {
	return `SELECT column_name, data_type, is_nullable FROM information_schema.columns
WHERE table_catalog = current_database() AND table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`, []any{schema, table}
}
