package dialect

import "sort"

// Registry maps a config type name to its Dialect. It is built once and
// handed to whoever needs dialect lookups.
type Registry map[string]Dialect

// NewRegistry returns every dialect backed by a compiled-in driver.
func NewRegistry() Registry {
	r := Registry{}
	for _, d := range []Dialect{
		&PostgresDialect{},
		&RedshiftDialect{},
		&MysqlDialect{},
		&MSSQLDialect{},
		&OracleDialect{},
		&SQLiteDialect{},
		&DuckDBDialect{},
	} {
		r[d.Name()] = d
	}
	return r
}

// Get returns the dialect registered for name.
func (r Registry) Get(name string) (Dialect, bool) {
	d, ok := r[name]
	return d, ok
}

// Names returns the registered dialect names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ensure interface implementation
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*RedshiftDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)
var _ Dialect = (*OracleDialect)(nil)
var _ Dialect = (*SQLiteDialect)(nil)
var _ Dialect = (*DuckDBDialect)(nil)
