package accessor

import (
	"context"
	"fmt"
	"strings"

	"ctxsync/internal/config"
	"ctxsync/internal/schema"

	"github.com/dustin/go-humanize"
)

const (
	maxStatLen       = 20
	truncatedStat    = 17
	profilingHeading = " - Profiling"
)

// Profiling renders profiling.md with per-column statistics. Each column is
// computed on its own so a failing column leaves the others intact.
type Profiling struct{}

func (Profiling) Kind() config.AccessorKind { return config.AccessorProfiling }
func (Profiling) Filename() string          { return filename(config.AccessorProfiling) }

func (p Profiling) Generate(ctx context.Context, ref Ref, t Table) string {
	heading := ref.Table + profilingHeading
	cols, err := t.Columns(ctx)
	if err != nil {
		return errorDoc(heading, "profiling", err)
	}

	lines := []string{
		"# " + heading,
		"",
		fmt.Sprintf("**Schema:** `%s`", ref.Schema),
		"",
		"## Column Statistics",
		"",
		"| Column | Type | Nulls | Unique | Min | Max |",
		"|--------|------|-------|--------|-----|-----|",
	}
	for _, c := range cols {
		lines = append(lines, p.row(ctx, t, c))
	}
	return strings.Join(lines, "\n")
}

func (Profiling) row(ctx context.Context, t Table, c schema.Column) (line string) {
	defer func() {
		if r := recover(); r != nil {
			line = errorRow(c, fmt.Sprint(r))
		}
	}()

	nulls, err := t.NullCount(ctx, c.Name)
	if err != nil {
		return errorRow(c, err.Error())
	}
	distinct, err := t.DistinctCount(ctx, c.Name)
	if err != nil {
		return errorRow(c, err.Error())
	}

	var lo, hi string
	if c.IsNumeric() || c.IsTemporal() {
		// min/max failures leave the cells blank
		if l, h, err := t.MinMax(ctx, c.Name); err == nil {
			lo, hi = stat(l), stat(h)
		}
	}
	return fmt.Sprintf("| `%s` | `%s` | %s | %s | %s | %s |",
		c.Name, c.DataType, humanize.Comma(nulls), humanize.Comma(distinct), lo, hi)
}

func stat(v string) string {
	if r := []rune(v); len(r) > maxStatLen {
		return string(r[:truncatedStat]) + "..."
	}
	return v
}

func errorRow(c schema.Column, msg string) string {
	return fmt.Sprintf("| `%s` | `%s` | Error: %s | | | |", c.Name, c.DataType, escapeCell(msg))
}
