package accessor

import (
	"context"
	"fmt"
	"strings"

	"ctxsync/internal/config"
)

// Columns renders columns.md: name, type and nullability of every column.
type Columns struct{}

func (Columns) Kind() config.AccessorKind { return config.AccessorColumns }
func (Columns) Filename() string          { return filename(config.AccessorColumns) }

func (Columns) Generate(ctx context.Context, ref Ref, t Table) string {
	cols, err := t.Columns(ctx)
	if err != nil {
		return errorDoc(ref.Table, "schema", err)
	}

	lines := []string{
		"# " + ref.Table,
		"",
		fmt.Sprintf("**Schema:** `%s`", ref.Schema),
		"",
		"## Columns",
		"",
		"| Column | Type | Nullable | Description |",
		"|--------|------|----------|-------------|",
	}
	for _, c := range cols {
		nullable := "No"
		if c.IsNullable {
			nullable = "Yes"
		}
		lines = append(lines, fmt.Sprintf("| `%s` | `%s` | %s |  |", c.Name, c.DataType, nullable))
	}
	return strings.Join(lines, "\n")
}
