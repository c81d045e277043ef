package cmd

import (
	"context"
	"fmt"
	"time"

	"ctxsync/internal/config"
	"ctxsync/internal/dialect"
	"ctxsync/internal/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const checkTimeout = 15 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test the connection to every configured database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, err := loadProject()
		if err != nil {
			return err
		}
		if len(cfg.Databases) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No databases configured."))
			return nil
		}

		dialects := dialect.NewRegistry()
		failed := 0
		for _, db := range cfg.Databases {
			label := providerStyle.Render(db.Name) + dimStyle.Render(db.Type+" ")
			n, err := checkDatabase(cmd.Context(), dialects, sync.ResolvePath(db, dir))
			if err != nil {
				failed++
				logger.Debug("check failed", zap.String("database", db.Name), zap.Error(err))
				fmt.Fprintln(cmd.OutOrStdout(), label+failStyle.Render("FAIL ")+err.Error())
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), label+okStyle.Render("OK ")+fmt.Sprintf("%d schemas", n))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d databases unreachable", failed, len(cfg.Databases))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

// checkDatabase connects, pings and counts visible schemas.
func checkDatabase(ctx context.Context, dialects dialect.Registry, db config.Database) (int, error) {
	d, ok := dialects.Get(db.Type)
	if !ok {
		return 0, fmt.Errorf("unsupported database type %q", db.Type)
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	conn, err := sync.OpenSQL(ctx, d, db)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	schemas, err := conn.ListSchemas(ctx)
	if err != nil {
		return 0, err
	}
	return len(schemas), nil
}
