package dialect

import (
	"fmt"
	"strings"

	"ctxsync/internal/config"

	_ "github.com/microsoft/go-mssqldb" // SQL Server Driver
)

type MSSQLDialect struct{}

func (d *MSSQLDialect) Name() string       { return "mssql" }
func (d *MSSQLDialect) DriverName() string { return "sqlserver" }

func (d *MSSQLDialect) DSN(db config.Database) (string, error) {
	if db.DSN != "" {
		return db.DSN, nil
	}
	if err := requireDatabase(db); err != nil {
		return "", err
	}
	params := make(map[string]string, len(db.Params)+1)
	for k, v := range db.Params {
		params[k] = v
	}
	params["database"] = db.Database
	db.Params = params
	return urlDSN("sqlserver", db, 1433, ""), nil
}

func (d *MSSQLDialect) SchemaQueries() []string {
	return []string{`SELECT DISTINCT TABLE_SCHEMA FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_SCHEMA NOT IN ('sys', 'INFORMATION_SCHEMA')
ORDER BY TABLE_SCHEMA`}
}

func (d *MSSQLDialect) TablesQuery(schema string) (string, []any) {
	// Use @p1 for schema binding
	return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE IN ('BASE TABLE', 'VIEW')
ORDER BY TABLE_NAME`, []any{schema}
}

func (d *MSSQLDialect) ColumnsQuery(schema, table string) (string, []any) {
	return `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION`, []any{schema, table}
}

func (d *MSSQLDialect) QuoteIdent(name string) string {
	return quoteWith(name, "[", "]")
}

func (d *MSSQLDialect) QualifiedName(schema, table string) string {
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(table)
}

// Placeholder uses go-mssqldb's @p1, @p2 ordinal parameters.
func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

func (d *MSSQLDialect) LimitQuery(query string, limit int) string {
	// Simple T-SQL TOP injection; only applied to the queries we generate.
	trimmed := strings.TrimSpace(query)
	if strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return fmt.Sprintf("SELECT TOP %d%s", limit, trimmed[len("SELECT"):])
	}
	return query
}

func (d *MSSQLDialect) NormalizeType(sqlType string) string {
	t := strings.ToLower(sqlType)
	switch t {
	case "nvarchar", "nchar", "text", "ntext":
		return "varchar"
	case "bit":
		return "boolean"
	case "datetime2", "smalldatetime":
		return "datetime"
	case "smallmoney":
		return "money"
	default:
		return t
	}
}
