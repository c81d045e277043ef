// Package sync reconciles the local output tree with configured upstream
// resources: databases become markdown trees, repositories working copies.
package sync

import (
	"context"
	"fmt"

	"ctxsync/internal/config"
)

// Provider syncs one kind of resource into its own output directory.
type Provider interface {
	// Name is shown in logs and the run summary, e.g. "Databases".
	Name() string
	// DefaultOutputDir is used unless the configuration overrides it.
	DefaultOutputDir() string
	// ShouldSync reports whether cfg declares anything for this provider.
	ShouldSync(cfg *config.Project) bool
	// PreSync removes output for resources no longer in cfg.
	PreSync(ctx context.Context, cfg *config.Project, outputPath string) error
	Sync(ctx context.Context, cfg *config.Project, outputPath, projectPath string) (*Result, error)
}

// Result summarizes one provider's run.
type Result struct {
	Provider    string
	ItemsSynced int
	Details     map[string]int
	Summary     string
}

// String returns Summary, or a plain count when none was set.
func (r *Result) String() string {
	if r.Summary != "" {
		return r.Summary
	}
	return fmt.Sprintf("%d synced", r.ItemsSynced)
}

var (
	_ Provider = (*DatabaseProvider)(nil)
	_ Provider = (*RepositoryProvider)(nil)
)
