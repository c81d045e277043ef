package dialect

import (
	"fmt"
	"strings"

	"ctxsync/internal/config"

	go_ora "github.com/sijms/go-ora/v2"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string       { return "oracle" }
func (d *OracleDialect) DriverName() string { return "oracle" }

// DSN treats the database field as the service name.
func (d *OracleDialect) DSN(db config.Database) (string, error) {
	if db.DSN != "" {
		return db.DSN, nil
	}
	if err := requireDatabase(db); err != nil {
		return "", err
	}
	host := db.Host
	if host == "" {
		host = "localhost"
	}
	port := db.Port
	if port == 0 {
		port = 1521
	}
	return go_ora.BuildUrl(host, port, db.Database, db.User, db.Password, db.Params), nil
}

// SchemaQueries: Oracle schemas are users; without a fixed schema only the
// connected user's schema is synced.
func (d *OracleDialect) SchemaQueries() []string {
	return []string{`SELECT SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA') FROM DUAL`}
}

func (d *OracleDialect) TablesQuery(schema string) (string, []any) {
	return `SELECT TABLE_NAME FROM ALL_TABLES WHERE OWNER = :1 ORDER BY TABLE_NAME`, []any{schema}
}

func (d *OracleDialect) ColumnsQuery(schema, table string) (string, []any) {
	return `SELECT COLUMN_NAME, DATA_TYPE, CASE NULLABLE WHEN 'Y' THEN 'YES' ELSE 'NO' END
FROM ALL_TAB_COLUMNS WHERE OWNER = :1 AND TABLE_NAME = :2
ORDER BY COLUMN_ID`, []any{schema, table}
}

func (d *OracleDialect) QuoteIdent(name string) string {
	return ansiQuote(name)
}

func (d *OracleDialect) QualifiedName(schema, table string) string {
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(table)
}

func (d *OracleDialect) Placeholder(index int) string {
	return fmt.Sprintf(":%d", index+1)
}

func (d *OracleDialect) LimitQuery(query string, limit int) string {
	return fmt.Sprintf("SELECT * FROM (%s) WHERE ROWNUM <= %d", query, limit)
}

func (d *OracleDialect) NormalizeType(sqlType string) string {
	s := strings.ToLower(sqlType)
	if strings.Contains(s, "char") || strings.Contains(s, "clob") {
		return "string"
	}
	if strings.Contains(s, "int") || strings.Contains(s, "number") || strings.Contains(s, "float") {
		return "integer"
	}
	if strings.Contains(s, "date") || strings.Contains(s, "time") || strings.Contains(s, "year") {
		return "datetime"
	}
	return s
}
