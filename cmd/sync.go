package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ctxsync/internal/accessor"
	"ctxsync/internal/config"
	"ctxsync/internal/dialect"
	"ctxsync/internal/git"
	"ctxsync/internal/progress"
	"ctxsync/internal/sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	providerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Width(14)
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync configured databases and repositories into the project directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, err := loadProject()
		if err != nil {
			return err
		}

		reporter := newReporter()
		runner := newRunner(cfg, reporter, false)

		start := time.Now()
		results := runner.Run(cmd.Context(), cfg, dir)
		reporter.Stop()

		printSummary(cmd.OutOrStdout(), results, time.Since(start))
		if err := cmd.Context().Err(); err != nil {
			return fmt.Errorf("sync interrupted: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
}

// newReporter draws progress bars only for an interactive stdout.
func newReporter() progress.Reporter {
	if noProgress || !isatty.IsTerminal(os.Stdout.Fd()) {
		return progress.Nop{}
	}
	return progress.NewBars(os.Stdout)
}

func newRunner(cfg *config.Project, reporter progress.Reporter, dryRun bool) *sync.Runner {
	cleaner := &sync.Cleaner{Logger: logger, DryRun: dryRun}
	return &sync.Runner{
		Logger: logger,
		Providers: []sync.Provider{
			sync.NewDatabaseProvider(sync.DatabaseOptions{
				Logger:      logger,
				Dialects:    dialect.NewRegistry(),
				Progress:    reporter,
				Accessors:   accessor.NewRegistry(cfg.Sync.PreviewRows),
				Cleaner:     cleaner,
				Parallelism: cfg.Sync.Parallelism,
			}),
			sync.NewRepositoryProvider(logger, git.NewClient(), cleaner, reporter),
		},
	}
}

func printSummary(w io.Writer, results []*sync.Result, elapsed time.Duration) {
	if len(results) == 0 {
		fmt.Fprintln(w, dimStyle.Render("Nothing to sync."))
		return
	}

	fmt.Fprintln(w, titleStyle.Render("Sync complete")+dimStyle.Render(" in "+elapsed.Round(time.Millisecond).String()))
	for _, r := range results {
		line := providerStyle.Render(r.Provider) + r.String()
		if failed := r.Details["failed"]; failed > 0 && !strings.Contains(r.Summary, "failed") {
			line += failStyle.Render(fmt.Sprintf(", %d failed", failed))
		}
		fmt.Fprintln(w, "  "+line)
	}
}
