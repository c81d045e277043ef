package dialect

import (
	"ctxsync/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib" // Redshift speaks the PostgreSQL wire protocol
)

// RedshiftDialect reuses the PostgreSQL catalog queries over the pgx driver.
type RedshiftDialect struct {
	PostgresDialect
}

func (d *RedshiftDialect) Name() string       { return "redshift" }
func (d *RedshiftDialect) DriverName() string { return "pgx" }

func (d *RedshiftDialect) DSN(db config.Database) (string, error) {
	if db.DSN != "" {
		return db.DSN, nil
	}
	if err := requireDatabase(db); err != nil {
		return "", err
	}
	return urlDSN("postgres", db, 5439, "/"+db.Database), nil
}

func (d *RedshiftDialect) SchemaQueries() []string {
	return []string{`SELECT schema_name FROM information_schema.schemata
WHERE schema_name NOT IN ('information_schema', 'pg_catalog', 'pg_internal', 'catalog_history')
  AND schema_name NOT LIKE 'pg_temp%'
ORDER BY schema_name`}
}
