package schema

import (
	"strings"
)

type Column struct {
	Name string
	// DataType is the type as reported by the catalog, e.g. "int(11) unsigned".
	DataType string
	// Normalized is DataType passed through the dialect's NormalizeType.
	Normalized string
	IsNullable bool
}

var numericPrefixes = []string{
	"tinyint", "smallint", "mediumint", "bigint", "int", "integer",
	"decimal", "numeric", "number", "float", "double", "real",
	"money", "smallmoney", "serial", "bigserial", "smallserial",
}

// IsTemporal reports whether min/max of the column are meaningful as points in time.
func (c Column) IsTemporal() bool {
	t := strings.ToLower(c.Normalized)
	return strings.Contains(t, "date") || strings.Contains(t, "time") || strings.HasPrefix(t, "interval")
}

// IsNumeric reports whether the column holds numbers.
func (c Column) IsNumeric() bool {
	if c.IsTemporal() {
		return false
	}
	t := strings.ToLower(c.Normalized)
	for _, p := range numericPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

// Rows is a bounded result set rendered to strings. NULL becomes "".
type Rows struct {
	Columns []string
	Values  [][]string
}
