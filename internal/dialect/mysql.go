package dialect

import (
	"fmt"
	"strings"

	"ctxsync/internal/config"

	"github.com/go-sql-driver/mysql"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string       { return "mysql" }
func (d *MysqlDialect) DriverName() string { return "mysql" }

func (d *MysqlDialect) DSN(db config.Database) (string, error) {
	if db.DSN != "" {
		return db.DSN, nil
	}
	cfg := mysql.NewConfig()
	cfg.User = db.User
	cfg.Passwd = db.Password
	cfg.Net = "tcp"
	cfg.Addr = hostPort(db, 3306)
	cfg.DBName = db.Database
	if len(db.Params) > 0 {
		cfg.Params = make(map[string]string, len(db.Params))
		for k, v := range db.Params {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN(), nil
}

// SchemaQueries: in MySQL a schema is a database. The connected database is
// preferred; without one every user schema on the server is listed, and as a
// last resort the schema names are taken from the table catalog itself.
func (d *MysqlDialect) SchemaQueries() []string {
	return []string{
		`SELECT DATABASE() FROM DUAL WHERE DATABASE() IS NOT NULL`,
		`SELECT SCHEMA_NAME FROM information_schema.SCHEMATA
WHERE SCHEMA_NAME NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
ORDER BY SCHEMA_NAME`,
		`SELECT DISTINCT TABLE_SCHEMA FROM information_schema.TABLES
WHERE TABLE_SCHEMA NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
ORDER BY TABLE_SCHEMA`,
	}
}

func (d *MysqlDialect) TablesQuery(schema string) (string, []any) {
	return `SELECT TABLE_NAME FROM information_schema.TABLES
WHERE TABLE_SCHEMA = ? AND TABLE_TYPE IN ('BASE TABLE', 'VIEW')
ORDER BY TABLE_NAME`, []any{schema}
}

func (d *MysqlDialect) ColumnsQuery(schema, table string) (string, []any) {
	return `SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`, []any{schema, table}
}

func (d *MysqlDialect) QuoteIdent(name string) string {
	return quoteWith(name, "`", "`")
}

func (d *MysqlDialect) QualifiedName(schema, table string) string {
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(table)
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}

func (d *MysqlDialect) LimitQuery(query string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

// NormalizeType strips display widths and modifiers from COLUMN_TYPE,
// e.g. "int(11) unsigned" -> "int".
func (d *MysqlDialect) NormalizeType(sqlType string) string {
	t := DefaultNormalizeType(sqlType)
	if i := strings.IndexAny(t, "( "); i >= 0 {
		t = t[:i]
	}
	return t
}
