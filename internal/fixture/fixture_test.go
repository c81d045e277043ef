package fixture_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"ctxsync/internal/dialect"
	"ctxsync/internal/fixture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorIsDeterministic(t *testing.T) {
	a, b := fixture.NewGenerator(1), fixture.NewGenerator(1)
	for range 20 {
		for _, c := range fixture.Users.Columns {
			assert.Equal(t, a.Value(c), b.Value(c), c.Name)
		}
	}
}

func TestGeneratorValuesFollowColumn(t *testing.T) {
	g := fixture.NewGenerator(3)
	g.NullRatio = 0

	email, ok := g.Value(fixture.Column{Name: "contact_email", Type: "VARCHAR(80)", Nullable: true}).(string)
	require.True(t, ok)
	assert.Contains(t, email, "@")

	n, ok := g.Value(fixture.Column{Name: "is_active", Type: "INTEGER"}).(int)
	require.True(t, ok)
	assert.True(t, n == 0 || n == 1)

	d, ok := g.Value(fixture.Column{Name: "born", Type: "DATE"}).(string)
	require.True(t, ok)
	assert.Len(t, d, len("2006-01-02"))

	assert.IsType(t, []byte{}, g.Value(fixture.Column{Name: "payload", Type: "BLOB"}))
	assert.Nil(t, g.Value(fixture.Column{Name: "shape", Type: "GEOMETRY"}))
}

func TestFill(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	d := &dialect.SQLiteDialect{}
	require.NoError(t, fixture.Create(ctx, db, d, "main", fixture.Orders))

	ticks := 0
	n, err := fixture.Fill(ctx, db, d, "main", fixture.Orders, fixture.NewGenerator(9), 12, func() { ticks++ })
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, 12, ticks)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "main"."orders"`).Scan(&count))
	assert.Equal(t, 12, count)

	err = fixture.Create(ctx, db, d, "main", fixture.Orders)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to create orders"))
}
