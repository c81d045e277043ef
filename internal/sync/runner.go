package sync

import (
	"context"
	"path/filepath"

	"ctxsync/internal/config"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Runner drives every provider in order.
type Runner struct {
	Providers []Provider
	Logger    *zap.Logger
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// OutputPath resolves a provider's output directory against projectDir.
func OutputPath(cfg *config.Project, p Provider, projectDir string) string {
	dir := cfg.OutputDir(p.DefaultOutputDir())
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(projectDir, dir)
}

// Run syncs each provider and returns the results of those that ran.
// Provider failures are logged; nothing here aborts the run except ctx.
func (r *Runner) Run(ctx context.Context, cfg *config.Project, projectDir string) []*Result {
	var results []*Result
	for _, p := range r.Providers {
		if ctx.Err() != nil {
			break
		}
		log := r.logger().With(zap.String("provider", p.Name()))
		out := OutputPath(cfg, p, projectDir)

		if err := p.PreSync(ctx, cfg, out); err != nil {
			log.Error("pre-sync cleanup failed", zap.Error(err))
		}
		if !p.ShouldSync(cfg) {
			log.Debug("nothing to sync")
			continue
		}

		log.Info("syncing", zap.String("location", out))
		res, err := p.Sync(ctx, cfg, out, projectDir)
		if err != nil {
			log.Error("sync failed", zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results
}

// Clean runs only the pre-sync passes of every provider.
func (r *Runner) Clean(ctx context.Context, cfg *config.Project, projectDir string) error {
	var errs error
	for _, p := range r.Providers {
		if err := p.PreSync(ctx, cfg, OutputPath(cfg, p, projectDir)); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
