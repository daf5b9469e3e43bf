/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jacobarthurs/profileviz/internal/config"
	"github.com/jacobarthurs/profileviz/internal/profile"
	"github.com/jacobarthurs/profileviz/internal/session"
)

var Version = "dev"

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details to stderr")
}

var rootCmd = &cobra.Command{
	Use:          "profileviz",
	SilenceUsage: true,
	Short:        "Explore and compare query execution profiles",
	Long: `profileviz turns a JSON query execution profile into a navigable plan graph.

It lays the operator tree out, ranks the slowest operators, filters nodes
with a small query language and renders the result as text, JSON or an
HTML page with the plan drawn as SVG.`,
	Example: `  # Slowest operators of a profile
  profileviz top profile.json

  # Render the plan, framed on the scans of one table
  profileviz view profile.json --filter "table=orders" -o plan.html

  # Walk a profile interactively
  profileviz explore profile.json

  # Setup profile archives
  profileviz init`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logrus.SetOutput(os.Stderr)
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// addSourceFlags registers the flags that pick an archive to read profiles from.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("db", "d", "", "PostgreSQL connection string of a profile archive")
	cmd.Flags().StringP("archive", "a", "", "Use named archive from config")
	cmd.MarkFlagsMutuallyExclusive("db", "archive")
}

func archiveRef(cmd *cobra.Command) (profile.ArchiveRef, error) {
	db, _ := cmd.Flags().GetString("db")
	name, _ := cmd.Flags().GetString("archive")

	archive, err := config.ResolveArchive(db, name)
	if err != nil {
		return profile.ArchiveRef{}, err
	}
	return profile.ArchiveRef{ConnStr: archive.ConnStr, Table: archive.Table}, nil
}

// readProfile resolves a profile from a file argument, or from the archive
// when queryID is set.
func readProfile(ctx context.Context, cmd *cobra.Command, input, queryID, label string) (*profile.Document, error) {
	src := profile.Source{Input: input, QueryID: queryID}
	if queryID != "" {
		ref, err := archiveRef(cmd)
		if err != nil {
			return nil, err
		}
		src.Archive = ref
	}
	return profile.Resolve(ctx, src, label)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openSession reads the profile named by the first argument (or --query-id)
// and builds a session over it.
func openSession(cmd *cobra.Command, args []string) (*session.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var input string
	if len(args) > 0 {
		input = args[0]
	}
	queryID, _ := cmd.Flags().GetString("query-id")

	doc, err := readProfile(cmd.Context(), cmd, input, queryID, "")
	if err != nil {
		return nil, err
	}

	width, _ := cmd.Flags().GetFloat64("width")
	height, _ := cmd.Flags().GetFloat64("height")
	return session.New(doc, cfg, session.Options{
		Logger: logrus.StandardLogger(),
		Width:  width,
		Height: height,
	})
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
	}
	return nil
}
