/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jacobarthurs/profileviz/internal/console"
	"github.com/jacobarthurs/profileviz/internal/profile"
	"github.com/jacobarthurs/profileviz/internal/session"
)

var exploreCmd = &cobra.Command{
	Use:   "explore [file]",
	Short: "Navigate a query profile from the command line",
	Long: `Open a query profile in a plan view session and drive it with one command
per line read from stdin: pan, zoom, fit, focus, filter, detail and more.
Type "help" inside the session for the full list.

"load <file|query-id>" replaces the current profile; a profile that fails to
load leaves the current one in place. Query ids are fetched from the archive
selected by --db or --archive.`,
	Example: `  # Interactive session
  profileviz explore profile.json

  # Scripted session
  printf 'filter type=scan\nfocus\ncamera\n' | profileviz explore profile.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		width, _ := cmd.Flags().GetFloat64("width")
		height, _ := cmd.Flags().GetFloat64("height")

		view := session.NewView(cfg, session.Options{
			Logger: logrus.StandardLogger(),
			Width:  width,
			Height: height,
		})
		defer view.Close()

		load := func(ctx context.Context, arg string) (*profile.Document, error) {
			if _, err := os.Stat(arg); err == nil || arg == "-" {
				return readProfile(ctx, cmd, arg, "", "")
			}
			return readProfile(ctx, cmd, "", arg, "")
		}

		c := console.New(view, os.Stdout, load, logrus.StandardLogger())
		if len(args) > 0 {
			if args[0] == "-" {
				return fmt.Errorf("explore reads commands from stdin; pass the profile as a file")
			}
			if err := c.Exec(cmd.Context(), "load "+args[0]); err != nil {
				return err
			}
		}
		return c.Run(cmd.Context(), os.Stdin)
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	addSourceFlags(exploreCmd)
	exploreCmd.Flags().Float64("width", 0, "Screen width in pixels (default from config)")
	exploreCmd.Flags().Float64("height", 0, "Screen height in pixels (default from config)")
}
