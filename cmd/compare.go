/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacobarthurs/profileviz/internal/comparator"
	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/metrics"
	"github.com/jacobarthurs/profileviz/internal/output"
)

var compareCmd = &cobra.Command{
	Use:   "compare [file1] [file2]",
	Short: "Compare two query profiles",
	Long: `Compare two query profiles node by node: operator changes, time and row
deltas, and skew.

Children are matched by position, so the comparison is most useful for two
runs of the same query. Either file (but not both) can be "-" to read from
stdin; --old-id and --new-id fetch a profile from the archive instead. If no
files are provided, enters interactive mode.`,
	Example: `  # Compare two exported profiles
  profileviz compare before.json after.json

  # Compare two archived runs
  profileviz compare --old-id q1 --new-id q2 --archive prod

  # Only report changes above 20%
  profileviz compare before.json after.json --threshold 20`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		oldID, _ := cmd.Flags().GetString("old-id")
		newID, _ := cmd.Flags().GetString("new-id")

		if err := checkFormat(format); err != nil {
			return err
		}
		if len(args) == 2 && args[0] == "-" && args[1] == "-" {
			return fmt.Errorf("only one profile can be read from stdin")
		}

		var inputs [2]string
		copy(inputs[:], args)

		oldG, oldQuery, err := readGraph(cmd, inputs[0], oldID, "old ")
		if err != nil {
			return err
		}
		newG, newQuery, err := readGraph(cmd, inputs[1], newID, "new ")
		if err != nil {
			return err
		}

		c := &comparator.Comparator{Threshold: threshold}
		result := c.Compare(oldG, newG)
		result.OldQueryID = oldQuery
		result.NewQueryID = newQuery

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, result)
		default:
			return output.RenderComparisonText(os.Stdout, result)
		}
	},
}

func readGraph(cmd *cobra.Command, input, queryID, label string) (*graph.Graph, string, error) {
	doc, err := readProfile(cmd.Context(), cmd, input, queryID, label)
	if err != nil {
		return nil, "", err
	}
	g, err := graph.Build(doc.Topology, metrics.Extract(doc.Execution))
	if err != nil {
		return nil, "", fmt.Errorf("reading %sprofile: %w", label, err)
	}
	return g, doc.QueryID, nil
}

func init() {
	rootCmd.AddCommand(compareCmd)
	addSourceFlags(compareCmd)
	compareCmd.Flags().String("old-id", "", "Fetch the old profile from the archive")
	compareCmd.Flags().String("new-id", "", "Fetch the new profile from the archive")
	compareCmd.Flags().Float64P("threshold", "t", 5, "Percent change below which a node counts as unchanged")
	compareCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
}
