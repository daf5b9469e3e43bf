/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacobarthurs/profileviz/internal/output"
	"github.com/jacobarthurs/profileviz/internal/profile"
)

var nodeCmd = &cobra.Command{
	Use:   "node <id> [file]",
	Short: "Show the metrics of one plan node",
	Long: `Show the detail rows of one plan node: times, rows, memory and the
class-specific metrics of its operators. Metrics the profile does not
record are shown as N/A.`,
	Example: `  profileviz node 2 profile.json
  profileviz node 0 profile.json --format json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}
		id, err := profile.ParseNodeID(args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, args[1:])
		if err != nil {
			return err
		}

		detail, ok := s.Detail(id)
		if !ok {
			return fmt.Errorf("node %d not found in plan", id)
		}

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, detail)
		default:
			return output.RenderDetailText(os.Stdout, detail)
		}
	},
}

func init() {
	rootCmd.AddCommand(nodeCmd)
	addSourceFlags(nodeCmd)
	nodeCmd.Flags().StringP("query-id", "q", "", "Fetch the profile with this query id from the archive")
	nodeCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
}
