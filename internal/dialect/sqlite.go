package dialect

import (
	"fmt"
	"strings"

	"ctxsync/internal/config"

	_ "modernc.org/sqlite" // pure Go SQLite Driver
)

type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) DSN(db config.Database) (string, error) {
	if db.DSN != "" {
		return db.DSN, nil
	}
	if db.Path == "" {
		return ":memory:", nil
	}
	return db.Path, nil
}

// SchemaQueries lists attached databases; "temp" is never synced.
func (d *SQLiteDialect) SchemaQueries() []string {
	return []string{`SELECT name FROM pragma_database_list WHERE name <> 'temp' ORDER BY seq`}
}

// TablesQuery reads the schema's own catalog, which cannot be parameterized.
func (d *SQLiteDialect) TablesQuery(schema string) (string, []any) {
	return fmt.Sprintf(`SELECT name FROM %s.sqlite_master
WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%%'
ORDER BY name`, d.QuoteIdent(schema)), nil
}

func (d *SQLiteDialect) ColumnsQuery(schema, table string) (string, []any) {
	return `SELECT name, type, CASE WHEN "notnull" = 0 THEN 'YES' ELSE 'NO' END
FROM pragma_table_info(?, ?) ORDER BY cid`, []any{table, schema}
}

func (d *SQLiteDialect) QuoteIdent(name string) string {
	return ansiQuote(name)
}

func (d *SQLiteDialect) QualifiedName(schema, table string) string {
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(table)
}

func (d *SQLiteDialect) Placeholder(index int) string {
	return "?"
}

func (d *SQLiteDialect) LimitQuery(query string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

// NormalizeType drops size arguments, e.g. "VARCHAR(20)" -> "varchar".
func (d *SQLiteDialect) NormalizeType(sqlType string) string {
	t := DefaultNormalizeType(sqlType)
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}
