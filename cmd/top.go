/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jacobarthurs/profileviz/internal/analyzer"
	"github.com/jacobarthurs/profileviz/internal/output"
)

var topCmd = &cobra.Command{
	Use:     "top [file]",
	Aliases: []string{"analyze"},
	Short:   "Rank the slowest operators of a query profile",
	Long: `Rank the operators of a query profile by total time and report findings
such as dominant operators, skewed instances and network bound exchanges.

Input is a JSON query profile. Use "-" to read from stdin, --query-id to
fetch it from an archive. If no file is provided, enters interactive mode.`,
	Example: `  # Five slowest operators
  profileviz top profile.json

  # Every timed operator as JSON
  profileviz top profile.json --limit 0 --format json

  # From the default archive
  profileviz top --query-id b6a3c1f0-5e1d-11ef-9c2a-00163e0e1a2b`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		limit, _ := cmd.Flags().GetInt("limit")
		if err := checkFormat(format); err != nil {
			return err
		}

		s, err := openSession(cmd, args)
		if err != nil {
			return err
		}

		switch format {
		case "json":
			result := s.Analysis
			if limit > 0 && len(result.Ranked) > limit {
				result.Ranked = result.Ranked[:limit]
			}
			return output.RenderJSON(os.Stdout, result)
		default:
			return output.RenderAnalysisText(os.Stdout, s.QueryID, s.Analysis, limit)
		}
	},
}

func init() {
	rootCmd.AddCommand(topCmd)
	addSourceFlags(topCmd)
	topCmd.Flags().StringP("query-id", "q", "", "Fetch the profile with this query id from the archive")
	topCmd.Flags().IntP("limit", "n", analyzer.TopN, "Number of operators to list, 0 for all")
	topCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
}
