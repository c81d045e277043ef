package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ctxsync/internal/accessor"
	"ctxsync/internal/config"
	"ctxsync/internal/dialect"
	"ctxsync/internal/filter"
	"ctxsync/internal/progress"
	"ctxsync/internal/schema"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Connection is the upstream capability a dialect sync needs.
type Connection interface {
	ListSchemas(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, schema string) ([]string, error)
	Table(schema, name string) accessor.Table
	Close() error
}

// Opener connects to db using dialect d.
type Opener func(ctx context.Context, d dialect.Dialect, db config.Database) (Connection, error)

// OpenSQL is the Opener backed by database/sql drivers.
func OpenSQL(ctx context.Context, d dialect.Dialect, db config.Database) (Connection, error) {
	dsn, err := d.DSN(db)
	if err != nil {
		return nil, err
	}
	conn, err := schema.Open(ctx, d, dsn)
	if err != nil {
		return nil, err
	}
	return sqlConnection{conn}, nil
}

type sqlConnection struct {
	*schema.Conn
}

func (c sqlConnection) Table(schemaName, name string) accessor.Table {
	return c.Conn.Table(schemaName, name)
}

// DialectSyncer materializes one database into the output tree.
type DialectSyncer interface {
	Sync(ctx context.Context, db config.Database, outputRoot string, accessors []accessor.Accessor) (*State, error)
}

// sqlSyncer walks schemas and tables through a Connection. One instance per
// dialect; it keeps no per-run state.
type sqlSyncer struct {
	dialect  dialect.Dialect
	open     Opener
	logger   *zap.Logger
	progress progress.Reporter
}

// Sync returns an error only when the database as a whole could not be
// read. Schema and table problems are logged and skipped.
func (s *sqlSyncer) Sync(ctx context.Context, db config.Database, outputRoot string, accessors []accessor.Accessor) (*State, error) {
	conn, err := s.open(ctx, s.dialect, db)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	log := s.logger.With(zap.String("database", db.Name), zap.String("type", db.Type))

	var schemas []string
	if db.Schema != "" {
		schemas = []string{db.Schema}
	} else {
		schemas, err = conn.ListSchemas(ctx)
		if err != nil {
			return nil, err
		}
	}

	state := NewState(DatabaseRoot(outputRoot, db))
	schemaTask := s.progress.Task(db.Name, len(schemas))

	for _, schemaName := range schemas {
		// a partial state must never reach cleanup
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.syncSchema(ctx, log, conn, db, state, schemaName, accessors); err != nil {
			return nil, err
		}
		schemaTask.Incr()
	}
	return state, nil
}

// syncSchema only returns an error when ctx is done; everything else is
// logged and skipped.
func (s *sqlSyncer) syncSchema(ctx context.Context, log *zap.Logger, conn Connection, db config.Database, state *State, schemaName string, accessors []accessor.Accessor) error {
	log = log.With(zap.String("schema", schemaName))
	if !safeName(schemaName) {
		log.Warn("skipping schema with unusable name")
		return nil
	}

	all, err := conn.ListTables(ctx, schemaName)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn("failed to list tables", zap.Error(err))
		return nil
	}

	var tables []string
	for _, t := range all {
		if filter.Matches(schemaName, t, db.Include, db.Exclude) {
			tables = append(tables, t)
		}
	}
	if len(tables) == 0 {
		return nil
	}

	if err := os.MkdirAll(SchemaDir(state.Root, schemaName), 0o755); err != nil {
		log.Error("failed to create schema directory", zap.Error(err))
		return nil
	}
	state.AddSchema(schemaName)

	tableTask := s.progress.Task("  "+schemaName, len(tables))
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !safeName(table) {
			log.Warn("skipping table with unusable name", zap.String("table", table))
			tableTask.Incr()
			continue
		}
		if err := s.syncTable(ctx, conn, state.Root, schemaName, table, accessors); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Error("failed to write table", zap.String("table", table), zap.Error(err))
		} else {
			state.AddTable(schemaName, table)
		}
		tableTask.Incr()
	}
	return nil
}

// syncTable writes one artifact per accessor. Accessor failures are already
// inside the content, so only filesystem errors come back, or ctx's error
// when it ended while rendering; nothing is written in that case.
func (s *sqlSyncer) syncTable(ctx context.Context, conn Connection, root, schemaName, table string, accessors []accessor.Accessor) error {
	dir := TableDir(root, schemaName, table)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create table directory: %w", err)
	}

	ref := accessor.Ref{Schema: schemaName, Table: table}
	handle := conn.Table(schemaName, table)
	configured := map[string]bool{}

	contents := make([]string, len(accessors))
	for i, a := range accessors {
		contents[i] = accessor.Render(ctx, a, ref, handle)
	}
	// a cancelled run leaves existing artifacts untouched
	if err := ctx.Err(); err != nil {
		return err
	}

	var errs error
	for i, a := range accessors {
		configured[a.Filename()] = true
		if _, err := writeArtifact(filepath.Join(dir, a.Filename()), []byte(contents[i])); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to write %s: %w", a.Filename(), err))
		}
	}

	// artifacts of accessors dropped from the configuration
	for _, k := range config.AllAccessorKinds {
		name := string(k) + ".md"
		if configured[name] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
