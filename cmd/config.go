package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"ctxsync/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// loadProject resolves --project-dir and reads its configuration.
func loadProject() (*config.Project, string, error) {
	dir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, "", fmt.Errorf("invalid project directory: %w", err)
	}

	cfg, err := config.Load(viper.New(), dir, cfgFile)
	if errors.Is(err, config.ErrNotFound) {
		return nil, "", fmt.Errorf("%w in %s (set --config or --project-dir)", err, dir)
	}
	if err != nil {
		return nil, "", err
	}
	logger.Debug("configuration loaded", zap.String("project", dir), zap.Int("databases", len(cfg.Databases)), zap.Int("repos", len(cfg.Repos)))
	return cfg, dir, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the project configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadProject()
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg.Masked())
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	RootCmd.AddCommand(configCmd)
}
