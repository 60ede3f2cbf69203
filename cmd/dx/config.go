package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fentz26/dx/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dx.yaml client settings",
	}
	cmd.AddCommand(newConfigInitCmd(root))
	return cmd
}

func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var (
		force   bool
		history bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a dx.yaml with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := root.dir()
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.SettingsFile)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			settings := config.DefaultSettings()
			settings.History.Enabled = history
			if err := config.SaveSettings(path, settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing dx.yaml")
	cmd.Flags().BoolVar(&history, "history", false, "Enable the describe history")
	return cmd
}
