package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ifcview/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the default viewer config",
	Long: `init-config writes the viewer's default settings as YAML. Without a path
it writes to the per-user config directory, where ifcview finds it on start.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := filepath.Join(config.ConfigDir(), config.FileName)
	if len(args) == 1 {
		path = args[0]
	}

	cfg := config.Default()
	if flagModel != "" {
		cfg.Viewer.Model = flagModel
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
