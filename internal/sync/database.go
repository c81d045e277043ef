package sync

import (
	"context"
	"fmt"
	"path/filepath"

	"ctxsync/internal/accessor"
	"ctxsync/internal/config"
	"ctxsync/internal/dialect"
	"ctxsync/internal/progress"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DatabaseOptions wires a DatabaseProvider.
type DatabaseOptions struct {
	Logger    *zap.Logger
	Dialects  dialect.Registry
	Opener    Opener
	Progress  progress.Reporter
	Accessors *accessor.Registry
	Cleaner   *Cleaner
	// Parallelism bounds how many database roots sync at once.
	Parallelism int
}

// DatabaseProvider materializes every configured database.
type DatabaseProvider struct {
	logger      *zap.Logger
	syncers     map[string]DialectSyncer
	accessors   *accessor.Registry
	cleaner     *Cleaner
	parallelism int
}

// NewDatabaseProvider builds the dialect dispatch table once.
func NewDatabaseProvider(opts DatabaseOptions) *DatabaseProvider {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	open := opts.Opener
	if open == nil {
		open = OpenSQL
	}
	reporter := opts.Progress
	if reporter == nil {
		reporter = progress.Nop{}
	}
	accessors := opts.Accessors
	if accessors == nil {
		accessors = accessor.NewRegistry(config.DefaultPreviewRows)
	}
	cleaner := opts.Cleaner
	if cleaner == nil {
		cleaner = &Cleaner{Logger: logger}
	}

	syncers := make(map[string]DialectSyncer, len(opts.Dialects))
	for name, d := range opts.Dialects {
		syncers[name] = &sqlSyncer{dialect: d, open: open, logger: logger, progress: reporter}
	}

	return &DatabaseProvider{
		logger:      logger,
		syncers:     syncers,
		accessors:   accessors,
		cleaner:     cleaner,
		parallelism: max(opts.Parallelism, 1),
	}
}

func (p *DatabaseProvider) Name() string             { return "Databases" }
func (p *DatabaseProvider) DefaultOutputDir() string { return config.DefaultDatabasesDir }

func (p *DatabaseProvider) Items(cfg *config.Project) []config.Database {
	return cfg.Databases
}

func (p *DatabaseProvider) ShouldSync(cfg *config.Project) bool {
	return len(p.Items(cfg)) > 0
}

func (p *DatabaseProvider) PreSync(_ context.Context, cfg *config.Project, outputPath string) error {
	removed, err := p.cleaner.StaleDatabases(p.Items(cfg), outputPath)
	if removed > 0 {
		p.logger.Info("removed unused databases", zap.Int("count", removed))
	}
	return err
}

func (p *DatabaseProvider) Sync(ctx context.Context, cfg *config.Project, outputPath, projectPath string) (*Result, error) {
	return p.SyncItems(ctx, p.Items(cfg), outputPath, projectPath)
}

// rootGroup holds the databases that write to one root, in config order.
type rootGroup struct {
	root    string
	items   []config.Database
	states  []*State
	failed  int
	skipped int
}

// SyncItems syncs items then prunes what each root no longer contains.
// Databases sharing a root run one after another in the same goroutine, and
// no cleanup starts before every sync has returned.
func (p *DatabaseProvider) SyncItems(ctx context.Context, items []config.Database, outputPath, projectPath string) (*Result, error) {
	if len(items) == 0 {
		return &Result{Provider: p.Name()}, nil
	}

	groups := groupByRoot(items, outputPath)

	var g errgroup.Group
	g.SetLimit(p.parallelism)
	for _, grp := range groups {
		g.Go(func() error {
			for _, db := range grp.items {
				st, ok := p.syncOne(ctx, db, outputPath, projectPath)
				switch {
				case !ok:
					grp.failed++
				case st == nil:
					grp.skipped++
				default:
					grp.states = append(grp.states, st)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var schemas, tables, removed, failed int
	for _, grp := range groups {
		failed += grp.failed
		if len(grp.states) == 0 {
			continue
		}
		merged := NewState(grp.root)
		for _, st := range grp.states {
			merged.Merge(st)
			schemas += st.SchemasSynced
			tables += st.TablesSynced
		}
		if grp.failed > 0 {
			// the failed database's tables are not in the state
			p.logger.Warn("skipping cleanup of a partially synced root", zap.String("root", grp.root))
			continue
		}
		n, err := p.cleaner.StalePaths(merged)
		removed += n
		if err != nil {
			p.logger.Error("cleanup failed", zap.String("root", grp.root), zap.Error(err))
		}
	}

	summary := fmt.Sprintf("%d tables across %d schemas", tables, schemas)
	if removed > 0 {
		summary += fmt.Sprintf(", %d stale removed", removed)
	}
	return &Result{
		Provider:    p.Name(),
		ItemsSynced: tables,
		Details: map[string]int{
			"schemas": schemas,
			"tables":  tables,
			"removed": removed,
			"failed":  failed,
		},
		Summary: summary,
	}, nil
}

// syncOne reports ok=false for a failed database and a nil state for one
// that was skipped.
func (p *DatabaseProvider) syncOne(ctx context.Context, db config.Database, outputPath, projectPath string) (*State, bool) {
	log := p.logger.With(zap.String("database", db.Name), zap.String("type", db.Type))

	syncer, ok := p.syncers[db.Type]
	if !ok {
		log.Warn("unsupported database type")
		return nil, true
	}

	accessors, err := p.accessors.Resolve(db.AccessorKinds())
	if err != nil {
		log.Error(fmt.Sprintf("failed to sync %s", db.Name), zap.Error(err))
		return nil, false
	}
	names := make([]string, len(accessors))
	for i, a := range accessors {
		names[i] = string(a.Kind())
	}
	log.Info("syncing database", zap.Strings("accessors", names))

	st, err := syncer.Sync(ctx, ResolvePath(db, projectPath), outputPath, accessors)
	if err != nil {
		log.Error(fmt.Sprintf("failed to sync %s", db.Name), zap.Error(err))
		return nil, false
	}
	return st, true
}

func groupByRoot(items []config.Database, outputPath string) []*rootGroup {
	var groups []*rootGroup
	byRoot := map[string]*rootGroup{}
	for _, db := range items {
		root := DatabaseRoot(outputPath, db)
		grp, ok := byRoot[root]
		if !ok {
			grp = &rootGroup{root: root}
			byRoot[root] = grp
			groups = append(groups, grp)
		}
		grp.items = append(grp.items, db)
	}
	return groups
}

// ResolvePath makes a relative file path relative to the project directory.
func ResolvePath(db config.Database, projectPath string) config.Database {
	if db.Path != "" && db.Path != ":memory:" && !filepath.IsAbs(db.Path) && projectPath != "" {
		db.Path = filepath.Join(projectPath, db.Path)
	}
	return db
}
