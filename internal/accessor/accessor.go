// Package accessor turns one upstream table into markdown artifacts.
package accessor

import (
	"context"
	"fmt"

	"ctxsync/internal/config"
	"ctxsync/internal/schema"
)

// Table is what an accessor may ask of an upstream table.
type Table interface {
	Columns(ctx context.Context) ([]schema.Column, error)
	RowCount(ctx context.Context) (int64, error)
	NullCount(ctx context.Context, column string) (int64, error)
	DistinctCount(ctx context.Context, column string) (int64, error)
	MinMax(ctx context.Context, column string) (string, string, error)
	Preview(ctx context.Context, limit int) (*schema.Rows, error)
}

// Ref names the table being rendered.
type Ref struct {
	Schema string
	Table  string
}

// Accessor generates one artifact per table. Implementations hold no
// mutable state and never fail: problems become part of the document.
type Accessor interface {
	Kind() config.AccessorKind
	Filename() string
	Generate(ctx context.Context, ref Ref, t Table) string
}

// Render runs a.Generate and turns a panic into an inline error document.
func Render(ctx context.Context, a Accessor, ref Ref, t Table) (content string) {
	defer func() {
		if r := recover(); r != nil {
			content = errorDoc(ref.Table, string(a.Kind()), fmt.Errorf("%v", r))
		}
	}()
	return a.Generate(ctx, ref, t)
}

func errorDoc(heading, what string, err error) string {
	return fmt.Sprintf("# %s\n\nError fetching %s: %v", heading, what, err)
}

func filename(k config.AccessorKind) string {
	return string(k) + ".md"
}
