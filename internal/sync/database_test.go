package sync_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ctxsync/internal/config"
	"ctxsync/internal/dialect"
	"ctxsync/internal/fixture"
	"ctxsync/internal/schema"
	"ctxsync/internal/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSQLite(t *testing.T) (string, *schema.Conn) {
	t.Helper()
	ctx := context.Background()
	d := &dialect.SQLiteDialect{}
	path := filepath.Join(t.TempDir(), "shop.db")

	conn, err := schema.Open(ctx, d, path)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, fixture.Seed(ctx, conn.DB(), d, "main",
		[]fixture.Table{fixture.Users, fixture.Orders}, fixture.NewGenerator(7), 15))
	return path, conn
}

func TestSyncSQLiteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath, _ := seedSQLite(t)
	out := t.TempDir()
	provider := newProvider(t, nil)
	dbs := []config.Database{{Type: "sqlite", Name: "shop", Path: dbPath}}

	res, err := provider.SyncItems(ctx, dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, "2 tables across 1 schemas", res.String())
	assert.Equal(t, 2, res.ItemsSynced)

	root := filepath.Join(out, "type=sqlite", "database=shop")
	first := snapshot(t, root)
	assert.Contains(t, first, "schema=main/table=users/columns.md")
	assert.Contains(t, first, "schema=main/table=users/description.md")
	assert.Contains(t, first, "schema=main/table=users/preview.md")
	assert.NotContains(t, first, "schema=main/table=users/profiling.md")
	assert.Contains(t, first["schema=main/table=orders/description.md"], "| **Row Count** | 15 |")

	before, err := os.Stat(filepath.Join(root, "schema=main", "table=users", "columns.md"))
	require.NoError(t, err)

	res, err = provider.SyncItems(ctx, dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Details["removed"])
	assert.Equal(t, first, snapshot(t, root))

	after, err := os.Stat(filepath.Join(root, "schema=main", "table=users", "columns.md"))
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime(), "unchanged artifacts are not rewritten")
}

func TestSyncSQLiteRemovesDroppedTable(t *testing.T) {
	ctx := context.Background()
	dbPath, conn := seedSQLite(t)
	out := t.TempDir()
	provider := newProvider(t, nil)
	dbs := []config.Database{{Type: "sqlite", Name: "shop", Path: dbPath}}

	_, err := provider.SyncItems(ctx, dbs, out, "")
	require.NoError(t, err)
	ordersDir := filepath.Join(out, "type=sqlite", "database=shop", "schema=main", "table=orders")
	require.DirExists(t, ordersDir)

	_, err = conn.DB().ExecContext(ctx, `DROP TABLE "main"."orders"`)
	require.NoError(t, err)

	res, err := provider.SyncItems(ctx, dbs, out, "")
	require.NoError(t, err)
	assert.NoDirExists(t, ordersDir)
	assert.Equal(t, "1 tables across 1 schemas, 1 stale removed", res.Summary)
}

func TestSyncResolvesPathAgainstProject(t *testing.T) {
	dbPath, _ := seedSQLite(t)
	out := t.TempDir()
	dbs := []config.Database{{Type: "sqlite", Name: "shop", Path: filepath.Base(dbPath)}}

	res, err := newProvider(t, nil).SyncItems(context.Background(), dbs, out, filepath.Dir(dbPath))
	require.NoError(t, err)
	assert.Equal(t, 2, res.ItemsSynced)
}

func TestSyncFilters(t *testing.T) {
	out := t.TempDir()
	conn := newFakeConn("public", "staging").
		with("public", "users", "orders", "orders_backup").
		with("staging", "tmp_load")
	dbs := []config.Database{{
		Type: "postgres", Name: "pg", Database: "analytics",
		Include: []string{"public.*"},
		Exclude: []string{"*_backup"},
	}}

	res, err := newProvider(t, opener(map[string]*fakeConn{"pg": conn})).SyncItems(context.Background(), dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"schemas": 1, "tables": 2, "removed": 0, "failed": 0}, res.Details)

	root := filepath.Join(out, "type=postgres", "database=analytics")
	assert.DirExists(t, filepath.Join(root, "schema=public", "table=users"))
	assert.DirExists(t, filepath.Join(root, "schema=public", "table=orders"))
	assert.NoDirExists(t, filepath.Join(root, "schema=public", "table=orders_backup"))
	assert.NoDirExists(t, filepath.Join(root, "schema=staging"), "schema with no matching tables gets no directory")
	assert.True(t, conn.closed)
}

func TestSyncFixedSchema(t *testing.T) {
	out := t.TempDir()
	conn := newFakeConn("public", "staging").with("public", "users").with("staging", "raw")
	conn.listErr = errors.New("must not enumerate")
	dbs := []config.Database{{Type: "postgres", Name: "pg", Database: "analytics", Schema: "staging"}}

	res, err := newProvider(t, opener(map[string]*fakeConn{"pg": conn})).SyncItems(context.Background(), dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsSynced)
	assert.DirExists(t, filepath.Join(out, "type=postgres", "database=analytics", "schema=staging", "table=raw"))
}

func TestSyncTableFailureIsolation(t *testing.T) {
	out := t.TempDir()
	conn := newFakeConn("public").with("public", "broken", "crashy", "fine")
	conn.handles["public.broken"] = &fakeTable{profilingErr: errors.New("permission denied for stats")}
	conn.handles["public.crashy"] = &fakeTable{panicColumns: true}
	dbs := []config.Database{{
		Type: "postgres", Name: "pg", Database: "analytics",
		Accessors: config.AllAccessorKinds,
	}}

	res, err := newProvider(t, opener(map[string]*fakeConn{"pg": conn})).SyncItems(context.Background(), dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ItemsSynced)

	tree := snapshot(t, filepath.Join(out, "type=postgres", "database=analytics", "schema=public"))
	assert.Contains(t, tree["table=broken/columns.md"], "| `id` | `integer` | No |  |")
	assert.Contains(t, tree["table=broken/preview.md"], "**Showing:** First 2 rows")
	assert.Contains(t, tree["table=broken/profiling.md"], "Error: permission denied for stats")

	assert.Equal(t, "# crashy\n\nError fetching columns: nil handle", tree["table=crashy/columns.md"])
	assert.Contains(t, tree["table=crashy/preview.md"], "**Showing:** First 2 rows")

	assert.Contains(t, tree["table=fine/profiling.md"], "| `id` | `integer` | 0 | 2 | 1 | 2 |")
}

func TestSyncSchemaListingFailureSkipsSchema(t *testing.T) {
	out := t.TempDir()
	conn := newFakeConn("a", "b").with("b", "t")
	conn.tableErrs["a"] = errors.New("no usage on schema a")
	dbs := []config.Database{{Type: "postgres", Name: "pg", Database: "analytics"}}

	res, err := newProvider(t, opener(map[string]*fakeConn{"pg": conn})).SyncItems(context.Background(), dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Details["schemas"])
	assert.DirExists(t, filepath.Join(out, "type=postgres", "database=analytics", "schema=b", "table=t"))
}

func TestSyncUnusableTableNameSkipped(t *testing.T) {
	out := t.TempDir()
	conn := newFakeConn("public").with("public", "a/b", "..", "ok")
	dbs := []config.Database{{Type: "postgres", Name: "pg", Database: "analytics"}}

	res, err := newProvider(t, opener(map[string]*fakeConn{"pg": conn})).SyncItems(context.Background(), dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsSynced)
	assert.NoDirExists(t, filepath.Join(out, "type=postgres", "database=analytics", "schema=public", "table=a"))
}

func TestSyncUnsupportedAndFailedDatabasesDoNotStopTheRun(t *testing.T) {
	out := t.TempDir()
	conn := newFakeConn("public").with("public", "users")
	dbs := []config.Database{
		{Type: "bigquery", Name: "bq", Database: "proj"},
		{Type: "mysql", Name: "down", Database: "shop"},
		{Type: "postgres", Name: "pg", Database: "analytics"},
	}

	res, err := newProvider(t, opener(map[string]*fakeConn{"pg": conn})).SyncItems(context.Background(), dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsSynced)
	assert.Equal(t, 1, res.Details["failed"])
	assert.NoDirExists(t, filepath.Join(out, "type=bigquery"))
	assert.NoDirExists(t, filepath.Join(out, "type=mysql"))
	assert.DirExists(t, filepath.Join(out, "type=postgres", "database=analytics", "schema=public", "table=users"))
}

func TestSyncFailedDatabaseKeepsItsTree(t *testing.T) {
	out := t.TempDir()
	stale := filepath.Join(out, "type=mysql", "database=shop", "schema=shop", "table=orders")
	mkdirs(t, stale)
	dbs := []config.Database{{Type: "mysql", Name: "down", Database: "shop"}}

	res, err := newProvider(t, opener(nil)).SyncItems(context.Background(), dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Details["failed"])
	assert.DirExists(t, stale)
}

func TestSyncSharedRootIsMerged(t *testing.T) {
	out := t.TempDir()
	// two connections to the same database, each covering one schema
	a := newFakeConn("sales").with("sales", "orders")
	b := newFakeConn("hr").with("hr", "people")
	dbs := []config.Database{
		{Type: "postgres", Name: "sales", Database: "analytics", Schema: "sales"},
		{Type: "postgres", Name: "hr", Database: "analytics", Schema: "hr"},
	}
	provider := newProvider(t, opener(map[string]*fakeConn{"sales": a, "hr": b}))

	for range 2 {
		res, err := provider.SyncItems(context.Background(), dbs, out, "")
		require.NoError(t, err)
		assert.Equal(t, 0, res.Details["removed"])
	}
	root := filepath.Join(out, "type=postgres", "database=analytics")
	assert.DirExists(t, filepath.Join(root, "schema=sales", "table=orders"))
	assert.DirExists(t, filepath.Join(root, "schema=hr", "table=people"))
}

func TestSyncParallel(t *testing.T) {
	out := t.TempDir()
	conns := map[string]*fakeConn{}
	var dbs []config.Database
	for _, name := range []string{"a", "b", "c", "d"} {
		conns[name] = newFakeConn("public").with("public", "t1", "t2")
		dbs = append(dbs, config.Database{Type: "postgres", Name: name, Database: name})
	}
	provider := sync.NewDatabaseProvider(sync.DatabaseOptions{
		Dialects:    dialect.NewRegistry(),
		Opener:      opener(conns),
		Parallelism: 3,
	})

	res, err := provider.SyncItems(context.Background(), dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, 8, res.ItemsSynced)
	assert.Equal(t, 4, res.Details["schemas"])
}

func TestSyncDroppedAccessorRemovesArtifact(t *testing.T) {
	out := t.TempDir()
	conn := newFakeConn("public").with("public", "users")
	provider := newProvider(t, opener(map[string]*fakeConn{"pg": conn}))
	db := config.Database{Type: "postgres", Name: "pg", Database: "analytics", Accessors: config.AllAccessorKinds}
	tableDir := filepath.Join(out, "type=postgres", "database=analytics", "schema=public", "table=users")

	_, err := provider.SyncItems(context.Background(), []config.Database{db}, out, "")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(tableDir, "profiling.md"))

	db.Accessors = []config.AccessorKind{config.AccessorColumns}
	_, err = provider.SyncItems(context.Background(), []config.Database{db}, out, "")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(tableDir, "columns.md"))
	assert.NoFileExists(t, filepath.Join(tableDir, "profiling.md"))
	assert.NoFileExists(t, filepath.Join(tableDir, "preview.md"))
}

func TestDatabasePreSync(t *testing.T) {
	out := t.TempDir()
	mkdirs(t, filepath.Join(out, "type=mysql", "database=gone"))
	cfg := &config.Project{Databases: []config.Database{{Type: "postgres", Name: "pg", Database: "analytics"}}}

	provider := newProvider(t, nil)
	require.NoError(t, provider.PreSync(context.Background(), cfg, out))
	assert.NoDirExists(t, filepath.Join(out, "type=mysql"))
	assert.True(t, provider.ShouldSync(cfg))
	assert.False(t, provider.ShouldSync(&config.Project{}))
}

func TestSyncCancelledMidSchemaKeepsArtifacts(t *testing.T) {
	out := t.TempDir()
	conn := newFakeConn("public").with("public", "a", "b")
	provider := newProvider(t, opener(map[string]*fakeConn{"pg": conn}))
	dbs := []config.Database{{Type: "postgres", Name: "pg", Database: "analytics"}}
	root := filepath.Join(out, "type=postgres", "database=analytics")

	_, err := provider.SyncItems(context.Background(), dbs, out, "")
	require.NoError(t, err)
	before := snapshot(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn.handles["public.a"] = &fakeTable{onColumns: cancel}

	res, err := provider.SyncItems(ctx, dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ItemsSynced)
	assert.Equal(t, 1, res.Details["failed"])
	assert.Equal(t, before, snapshot(t, root), "an interrupted run rewrites nothing")
}

func TestSyncCancelledLeavesStaleTables(t *testing.T) {
	out := t.TempDir()
	stale := filepath.Join(out, "type=postgres", "database=analytics", "schema=public", "table=old")
	mkdirs(t, stale)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := newFakeConn("public").with("public", "a", "b")
	conn.handles["public.a"] = &fakeTable{onColumns: cancel}
	dbs := []config.Database{{Type: "postgres", Name: "pg", Database: "analytics"}}

	res, err := newProvider(t, opener(map[string]*fakeConn{"pg": conn})).SyncItems(ctx, dbs, out, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Details["failed"])
	assert.DirExists(t, stale, "no cleanup after an interrupted sync")
	assert.NoFileExists(t, filepath.Join(out, "type=postgres", "database=analytics", "schema=public", "table=b", "columns.md"))
}
