package accessor

import (
	"context"
	"fmt"
	"strings"

	"ctxsync/internal/config"

	"github.com/dustin/go-humanize"
)

// Description renders description.md: row and column counts plus a slot for
// a hand-written description.
type Description struct{}

func (Description) Kind() config.AccessorKind { return config.AccessorDescription }
func (Description) Filename() string          { return filename(config.AccessorDescription) }

func (Description) Generate(ctx context.Context, ref Ref, t Table) string {
	cols, err := t.Columns(ctx)
	if err != nil {
		return errorDoc(ref.Table, "description", err)
	}
	rows, err := t.RowCount(ctx)
	if err != nil {
		return errorDoc(ref.Table, "description", err)
	}

	lines := []string{
		"# " + ref.Table,
		"",
		fmt.Sprintf("**Schema:** `%s`", ref.Schema),
		"",
		"## Table Metadata",
		"",
		"| Property | Value |",
		"|----------|-------|",
		fmt.Sprintf("| **Row Count** | %s |", humanize.Comma(rows)),
		fmt.Sprintf("| **Column Count** | %d |", len(cols)),
		"",
		"## Description",
		"",
		"_No description available._",
		"",
	}
	return strings.Join(lines, "\n")
}
