package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Table is a handle to one table or view. All statistics are computed with
// plain aggregate queries so they work the same across dialects.
type Table struct {
	conn   *Conn
	Schema string
	Name   string
}

func (t *Table) qualified() string {
	return t.conn.dialect.QualifiedName(t.Schema, t.Name)
}

// Columns returns the column list in ordinal order. A table with no visible
// columns is reported as missing.
func (t *Table) Columns(ctx context.Context) ([]Column, error) {
	d := t.conn.dialect
	q, args := d.ColumnsQuery(t.Schema, t.Name)
	rows, err := t.conn.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, dataType, isNull sql.NullString
		if err := rows.Scan(&name, &dataType, &isNull); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", t.Name, err)
		}
		if !name.Valid {
			continue
		}
		cols = append(cols, Column{
			Name:       name.String,
			DataType:   dataType.String,
			Normalized: d.NormalizeType(dataType.String),
			IsNullable: isNull.String == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s.%s not found", t.Schema, t.Name)
	}
	return cols, nil
}

func (t *Table) RowCount(ctx context.Context) (int64, error) {
	return t.count(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t.qualified()))
}

func (t *Table) NullCount(ctx context.Context, column string) (int64, error) {
	col := t.conn.dialect.QuoteIdent(column)
	return t.count(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", t.qualified(), col))
}

func (t *Table) DistinctCount(ctx context.Context, column string) (int64, error) {
	col := t.conn.dialect.QuoteIdent(column)
	return t.count(ctx, fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", col, t.qualified()))
}

// MinMax returns the smallest and largest value of column, rendered as text.
// An empty table yields two empty strings.
func (t *Table) MinMax(ctx context.Context, column string) (string, string, error) {
	col := t.conn.dialect.QuoteIdent(column)
	q := fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s", col, col, t.qualified())
	var lo, hi any
	if err := t.conn.db.QueryRowContext(ctx, q).Scan(&lo, &hi); err != nil {
		return "", "", fmt.Errorf("failed to query min/max of %s: %w", column, err)
	}
	return FormatValue(lo), FormatValue(hi), nil
}

// Preview returns at most limit rows in the table's natural order.
func (t *Table) Preview(ctx context.Context, limit int) (*Rows, error) {
	q := t.conn.dialect.LimitQuery(fmt.Sprintf("SELECT * FROM %s", t.qualified()), limit)
	rows, err := t.conn.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query preview: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	out := &Rows{Columns: names}
	for rows.Next() {
		raw := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan preview row: %w", err)
		}
		values := make([]string, len(raw))
		for i, v := range raw {
			values[i] = FormatValue(v)
		}
		out.Values = append(out.Values, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preview rows: %w", err)
	}
	return out, nil
}

func (t *Table) count(ctx context.Context, q string) (int64, error) {
	var n int64
	if err := t.conn.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.Name, err)
	}
	return n, nil
}

// FormatValue renders a scanned driver value as text. NULL is "".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}
