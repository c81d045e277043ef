package sync_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"ctxsync/internal/accessor"
	"ctxsync/internal/config"
	"ctxsync/internal/dialect"
	"ctxsync/internal/schema"
	"ctxsync/internal/sync"

	"github.com/stretchr/testify/require"
)

// fakeTable answers every accessor query from memory.
type fakeTable struct {
	profilingErr error
	panicColumns bool
	// onColumns runs before the columns are returned.
	onColumns func()
}

func (f *fakeTable) Columns(context.Context) ([]schema.Column, error) {
	if f.panicColumns {
		panic("nil handle")
	}
	if f.onColumns != nil {
		f.onColumns()
	}
	return []schema.Column{
		{Name: "id", DataType: "integer", Normalized: "integer"},
		{Name: "label", DataType: "text", Normalized: "text", IsNullable: true},
	}, nil
}

func (f *fakeTable) RowCount(context.Context) (int64, error) { return 2, nil }

func (f *fakeTable) NullCount(context.Context, string) (int64, error) {
	return 0, f.profilingErr
}

func (f *fakeTable) DistinctCount(context.Context, string) (int64, error) { return 2, nil }

func (f *fakeTable) MinMax(context.Context, string) (string, string, error) {
	return "1", "2", nil
}

func (f *fakeTable) Preview(context.Context, int) (*schema.Rows, error) {
	return &schema.Rows{
		Columns: []string{"id", "label"},
		Values:  [][]string{{"1", "a"}, {"2", "b"}},
	}, nil
}

// fakeConn is an in-memory upstream: schema -> tables.
type fakeConn struct {
	schemas   map[string][]string
	order     []string
	listErr   error
	tableErrs map[string]error
	handles   map[string]*fakeTable
	closed    bool
}

func newFakeConn(schemas ...string) *fakeConn {
	return &fakeConn{
		schemas:   map[string][]string{},
		order:     schemas,
		tableErrs: map[string]error{},
		handles:   map[string]*fakeTable{},
	}
}

func (c *fakeConn) with(schemaName string, tables ...string) *fakeConn {
	c.schemas[schemaName] = tables
	return c
}

func (c *fakeConn) ListSchemas(context.Context) ([]string, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.order, nil
}

func (c *fakeConn) ListTables(_ context.Context, schemaName string) ([]string, error) {
	if err := c.tableErrs[schemaName]; err != nil {
		return nil, err
	}
	return c.schemas[schemaName], nil
}

func (c *fakeConn) Table(schemaName, name string) accessor.Table {
	if h, ok := c.handles[schemaName+"."+name]; ok {
		return h
	}
	return &fakeTable{}
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// opener serves fake connections by database name.
func opener(conns map[string]*fakeConn) sync.Opener {
	return func(_ context.Context, _ dialect.Dialect, db config.Database) (sync.Connection, error) {
		c, ok := conns[db.Name]
		if !ok {
			return nil, errors.New("connection refused")
		}
		return c, nil
	}
}

func newProvider(t *testing.T, open sync.Opener) *sync.DatabaseProvider {
	t.Helper()
	return sync.NewDatabaseProvider(sync.DatabaseOptions{
		Dialects: dialect.NewRegistry(),
		Opener:   open,
	})
}

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(p, 0o755))
	}
}

// snapshot maps every file under root to its content.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		out[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	require.NoError(t, err)
	return out
}
