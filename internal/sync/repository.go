package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ctxsync/internal/config"
	"ctxsync/internal/git"
	"ctxsync/internal/progress"

	"go.uber.org/zap"
)

// RepositoryProvider keeps one working copy per configured repository.
type RepositoryProvider struct {
	logger   *zap.Logger
	git      git.Client
	cleaner  *Cleaner
	progress progress.Reporter
}

func NewRepositoryProvider(logger *zap.Logger, client git.Client, cleaner *Cleaner, reporter progress.Reporter) *RepositoryProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cleaner == nil {
		cleaner = &Cleaner{Logger: logger}
	}
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &RepositoryProvider{logger: logger, git: client, cleaner: cleaner, progress: reporter}
}

func (p *RepositoryProvider) Name() string             { return "Repositories" }
func (p *RepositoryProvider) DefaultOutputDir() string { return config.DefaultReposDir }

func (p *RepositoryProvider) Items(cfg *config.Project) []config.Repo {
	return cfg.Repos
}

func (p *RepositoryProvider) ShouldSync(cfg *config.Project) bool {
	return len(p.Items(cfg)) > 0
}

func (p *RepositoryProvider) PreSync(_ context.Context, cfg *config.Project, outputPath string) error {
	removed, err := p.cleaner.StaleRepos(p.Items(cfg), outputPath)
	if removed > 0 {
		p.logger.Info("removed unused repositories", zap.Int("count", removed))
	}
	return err
}

func (p *RepositoryProvider) Sync(ctx context.Context, cfg *config.Project, outputPath, _ string) (*Result, error) {
	return p.SyncItems(ctx, p.Items(cfg), outputPath)
}

// SyncItems clones missing repositories and updates existing ones. A git
// failure only costs that repository.
func (p *RepositoryProvider) SyncItems(ctx context.Context, repos []config.Repo, outputPath string) (*Result, error) {
	if len(repos) == 0 {
		return &Result{Provider: p.Name()}, nil
	}
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outputPath, err)
	}

	task := p.progress.Task(p.Name(), len(repos))
	synced, failed := 0, 0
	for _, repo := range repos {
		log := p.logger.With(zap.String("repo", repo.Name))
		if err := p.syncRepo(ctx, log, repo, filepath.Join(outputPath, repo.Name)); err != nil {
			log.Warn(fmt.Sprintf("failed to sync %s", repo.Name), zap.Error(err))
			failed++
		} else {
			log.Info("repository synced")
			synced++
		}
		task.Incr()
	}

	res := &Result{
		Provider:    p.Name(),
		ItemsSynced: synced,
		Details:     map[string]int{"synced": synced, "failed": failed},
	}
	if failed > 0 {
		res.Summary = fmt.Sprintf("%d synced, %d failed", synced, failed)
	}
	return res, nil
}

func (p *RepositoryProvider) syncRepo(ctx context.Context, log *zap.Logger, repo config.Repo, dir string) error {
	_, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("cloning", zap.String("url", repo.URL))
		return p.git.Clone(ctx, repo.URL, dir, repo.Branch)
	}
	if err != nil {
		return err
	}

	log.Info("pulling latest changes")
	if err := p.git.Pull(ctx, dir); err != nil {
		return err
	}
	if repo.Branch != "" {
		return p.git.Checkout(ctx, dir, repo.Branch)
	}
	return nil
}
