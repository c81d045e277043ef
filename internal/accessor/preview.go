package accessor

import (
	"context"
	"fmt"
	"strings"

	"ctxsync/internal/config"
)

const (
	maxCellLen     = 50
	truncatedCell  = 47
	previewHeading = " - Preview"
)

// Preview renders preview.md with the first Rows rows of the table.
type Preview struct {
	Rows int
}

func (Preview) Kind() config.AccessorKind { return config.AccessorPreview }
func (Preview) Filename() string          { return filename(config.AccessorPreview) }

func (p Preview) Generate(ctx context.Context, ref Ref, t Table) string {
	heading := ref.Table + previewHeading
	rows, err := t.Preview(ctx, p.Rows)
	if err != nil {
		return errorDoc(heading, "preview", err)
	}

	lines := []string{
		"# " + heading,
		"",
		fmt.Sprintf("**Schema:** `%s`", ref.Schema),
		fmt.Sprintf("**Showing:** First %d rows", len(rows.Values)),
		"",
		"## Data Preview",
		"",
	}

	header := make([]string, len(rows.Columns))
	sep := make([]string, len(rows.Columns))
	for i, c := range rows.Columns {
		header[i] = "`" + escapeCell(c) + "`"
		sep[i] = "---"
	}
	lines = append(lines, "| "+strings.Join(header, " | ")+" |", "| "+strings.Join(sep, " | ")+" |")

	for _, r := range rows.Values {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = cell(v)
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

// cell truncates long values then escapes table markup.
func cell(v string) string {
	if r := []rune(v); len(r) > maxCellLen {
		v = string(r[:truncatedCell]) + "..."
	}
	return escapeCell(v)
}

// escapeCell keeps v inside one markdown table cell.
func escapeCell(v string) string {
	v = strings.ReplaceAll(v, "|", `\|`)
	v = strings.ReplaceAll(v, "\r\n", " ")
	return strings.ReplaceAll(v, "\n", " ")
}
