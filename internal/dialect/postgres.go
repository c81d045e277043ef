package dialect

import (
	"fmt"
	"strings"

	"ctxsync/internal/config"

	_ "github.com/lib/pq" // PostgreSQL Driver
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "postgres" }

func (d *PostgresDialect) DSN(db config.Database) (string, error) {
	if db.DSN != "" {
		return db.DSN, nil
	}
	if err := requireDatabase(db); err != nil {
		return "", err
	}
	return urlDSN("postgres", db, 5432, "/"+db.Database), nil
}

func (d *PostgresDialect) SchemaQueries() []string {
	return []string{`SELECT schema_name FROM information_schema.schemata
WHERE schema_name NOT IN ('information_schema', 'pg_catalog')
  AND schema_name NOT LIKE 'pg_toast%'
  AND schema_name NOT LIKE 'pg_temp%'
ORDER BY schema_name`}
}

func (d *PostgresDialect) TablesQuery(schema string) (string, []any) {
	// use $1 placeholder
	return `SELECT table_name FROM information_schema.tables
WHERE table_schema = $1 AND table_type IN ('BASE TABLE', 'VIEW')
ORDER BY table_name`, []any{schema}
}

func (d *PostgresDialect) ColumnsQuery(schema, table string) (string, []any) {
	return `SELECT column_name, data_type, is_nullable FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`, []any{schema, table}
}

func (d *PostgresDialect) QuoteIdent(name string) string {
	return ansiQuote(name)
}

func (d *PostgresDialect) QualifiedName(schema, table string) string {
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(table)
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (d *PostgresDialect) LimitQuery(query string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

func (d *PostgresDialect) NormalizeType(sqlType string) string {
	t := strings.ToLower(sqlType)
	switch t {
	case "int4", "int2":
		return "int"
	case "int8":
		return "bigint"
	case "float4":
		return "float"
	case "float8", "double precision":
		return "double"
	case "bpchar", "character":
		return "char"
	case "character varying":
		return "varchar"
	case "timestamp without time zone":
		return "timestamp"
	case "timestamp with time zone":
		return "timestamptz"
	case "time without time zone":
		return "time"
	case "time with time zone":
		return "timetz"
	default:
		return t
	}
}
