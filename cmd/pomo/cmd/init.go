package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/pomo/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to .pomo.yaml in the current directory,
or to the user configuration directory with --user.`,
	RunE: runInit,
}

var (
	initForce bool
	initUser  bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration")
	initCmd.Flags().BoolVar(&initUser, "user", false, "Write the user configuration instead of the project one")
}

func runInit(cmd *cobra.Command, _ []string) error {
	path, err := initTarget()
	if err != nil {
		return err
	}

	if err := config.WriteFile(path, config.Default(), initForce); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func initTarget() (string, error) {
	if initUser {
		return config.UserConfigPath()
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return filepath.Join(cwd, config.ProjectConfigFile), nil
}
