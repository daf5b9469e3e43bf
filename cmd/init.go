/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacobarthurs/profileviz/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with example template",
	Long: `Create $XDG_CONFIG_HOME/profileviz/config.yaml holding the default layout,
viewport and edge settings plus an example archive entry.

Archives are PostgreSQL databases storing query profiles by query id. If a
config file already exists, it will not be overwritten.`,
	Example: `  # Create default config
  profileviz init

  # Overwrite existing config
  profileviz init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := config.Init(force)
		if err != nil {
			return err
		}

		fmt.Printf("Created config at %s\n", path)
		fmt.Println("Edit the example archive, then run 'profileviz archive list' to check it.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config file")
}
