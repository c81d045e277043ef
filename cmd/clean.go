package cmd

import (
	"fmt"

	"ctxsync/internal/progress"

	"github.com/spf13/cobra"
)

var dryRun bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove output of databases and repositories no longer configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, err := loadProject()
		if err != nil {
			return err
		}

		if err := newRunner(cfg, progress.Nop{}, dryRun).Clean(cmd.Context(), cfg, dir); err != nil {
			return fmt.Errorf("cleanup incomplete: %w", err)
		}
		if dryRun {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("Dry run: nothing was removed."))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Clean complete."))
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "only log what would be removed")
	RootCmd.AddCommand(cleanCmd)
}
