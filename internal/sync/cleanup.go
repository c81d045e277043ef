package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"ctxsync/internal/config"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Cleaner removes directories that the current configuration or the latest
// sync no longer accounts for. A failed removal is logged and returned in
// the aggregated error; it never stops the rest of the pass.
type Cleaner struct {
	Logger *zap.Logger
	// DryRun only reports what would be removed.
	DryRun bool
}

func (c *Cleaner) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// StalePaths removes schema= and table= directories under state.Root that
// state does not record. A stale schema is removed whole.
func (c *Cleaner) StalePaths(state *State) (int, error) {
	schemaDirs, err := prefixedDirs(state.Root, SchemaPrefix)
	if err != nil || len(schemaDirs) == 0 {
		return 0, err
	}

	removed := 0
	var errs error
	for _, schema := range slices.Sorted(maps.Keys(schemaDirs)) {
		path := schemaDirs[schema]
		if !state.HasSchema(schema) {
			if err := c.remove(path, "stale schema", zap.String("schema", schema)); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			removed++
			continue
		}

		tableDirs, err := prefixedDirs(path, TablePrefix)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, table := range slices.Sorted(maps.Keys(tableDirs)) {
			if state.HasTable(schema, table) {
				continue
			}
			if err := c.remove(tableDirs[table], "stale table", zap.String("schema", schema), zap.String("table", table)); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			removed++
		}
	}
	return removed, errs
}

// StaleDatabases removes type= directories with no configured database of
// that type, and database= directories inside kept types that no configured
// database maps to.
func (c *Cleaner) StaleDatabases(active []config.Database, root string) (int, error) {
	valid := map[string]map[string]bool{}
	for _, db := range active {
		if valid[db.Type] == nil {
			valid[db.Type] = map[string]bool{}
		}
		valid[db.Type][db.Identifier()] = true
	}

	typeDirs, err := prefixedDirs(root, TypePrefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs error
	for _, typ := range slices.Sorted(maps.Keys(typeDirs)) {
		path := typeDirs[typ]
		ids, ok := valid[typ]
		if !ok {
			if err := c.remove(path, "unused database type", zap.String("type", typ)); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			removed++
			continue
		}

		dbDirs, err := prefixedDirs(path, DatabasePrefix)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, id := range slices.Sorted(maps.Keys(dbDirs)) {
			if ids[id] {
				continue
			}
			if err := c.remove(dbDirs[id], "unused database", zap.String("type", typ), zap.String("database", id)); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			removed++
		}
	}
	return removed, errs
}

// StaleRepos removes every directory under root that is not a configured
// repository name.
func (c *Cleaner) StaleRepos(active []config.Repo, root string) (int, error) {
	names := make(map[string]bool, len(active))
	for _, r := range active {
		names[r.Name] = true
	}

	dirs, err := prefixedDirs(root, "")
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs error
	for _, name := range slices.Sorted(maps.Keys(dirs)) {
		if names[name] {
			continue
		}
		if err := c.remove(dirs[name], "unused repository", zap.String("repo", name)); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	return removed, errs
}

func (c *Cleaner) remove(path, what string, fields ...zap.Field) error {
	fields = append(fields, zap.String("path", path))
	if c.DryRun {
		c.logger().Info("would remove "+what, fields...)
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		c.logger().Error("failed to remove "+what, append(fields, zap.Error(err))...)
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	c.logger().Info("removed "+what, fields...)
	return nil
}

// prefixedDirs maps the suffix of every directory under root whose name
// starts with prefix to its path. A missing root is empty, not an error.
func prefixedDirs(root, prefix string) (map[string]string, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	out := map[string]string{}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		out[strings.TrimPrefix(e.Name(), prefix)] = filepath.Join(root, e.Name())
	}
	return out, nil
}
