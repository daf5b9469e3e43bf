/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jacobarthurs/profileviz/internal/filter"
	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/output"
)

type filterReport struct {
	Query   string                            `json:"query"`
	Active  bool                              `json:"active"`
	Hide    bool                              `json:"hide"`
	Matches []graph.NodeID                    `json:"matches"`
	States  map[graph.NodeID]filter.NodeState `json:"states"`
}

var filterCmd = &cobra.Command{
	Use:   "filter <query> [file]",
	Short: "List the nodes a filter query selects",
	Long: `Evaluate a filter query against a query profile.

A query is a list of groups separated by "," or "or"; the terms of a group
are joined by "&" or "and" and must all hold. Terms:

  node=<id>     the node itself
  +node=<id>    the node and its ancestors
  node=<id>+    the node and its descendants
  type=<class>  scan, join, exchange, aggregate, project, union
  table=<name>  scans of a table, case-insensitive

Append --hide inside the query to hide rather than dim non-matching nodes.
A malformed query selects nothing and leaves the plan unfiltered.`,
	Example: `  # Scans under the hash join
  profileviz filter "node=2+ & type=scan" profile.json

  # Either table, hiding everything else
  profileviz filter "table=orders, table=customer --hide" profile.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		s, err := openSession(cmd, args[1:])
		if err != nil {
			return err
		}

		res := s.ApplyFilter(args[0])
		query := s.Filter().Query()

		switch format {
		case "json":
			report := filterReport{
				Query:   query,
				Active:  res.Active,
				Hide:    res.Hide,
				Matches: res.IDs,
				States:  make(map[graph.NodeID]filter.NodeState, len(s.Graph.Nodes)),
			}
			for id := range s.Graph.Nodes {
				report.States[id] = res.State(id)
			}
			return output.RenderJSON(os.Stdout, report)
		default:
			return output.RenderFilterText(os.Stdout, s.Graph, query, res)
		}
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	addSourceFlags(filterCmd)
	filterCmd.Flags().StringP("query-id", "q", "", "Fetch the profile with this query id from the archive")
	filterCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
}
