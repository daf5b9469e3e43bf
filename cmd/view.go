/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jacobarthurs/profileviz/internal/output"
	"github.com/jacobarthurs/profileviz/internal/profile"
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Render a query profile as an HTML page",
	Long: `Lay the plan of a query profile out and render it as a standalone HTML
page with the graph drawn as SVG. The slowest operator and the rest of the
top five are highlighted; slowest operators and findings are listed beside
the graph.

The camera starts fitted to the whole plan. --filter applies a filter query
and frames its matches; --focus frames a single node instead.`,
	Example: `  # Whole plan
  profileviz view profile.json -o plan.html

  # Frame the scans below node 2, hiding the rest
  profileviz view profile.json --filter "node=2+ & type=scan --hide" -o plan.html

  # Frame one node on a small screen
  profileviz view profile.json --focus 5 --width 800 --height 600 > plan.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("filter")
		focus, _ := cmd.Flags().GetString("focus")
		outPath, _ := cmd.Flags().GetString("output")
		title, _ := cmd.Flags().GetString("title")
		bare, _ := cmd.Flags().GetBool("no-styles")

		s, err := openSession(cmd, args)
		if err != nil {
			return err
		}

		if query != "" {
			res := s.ApplyFilter(query)
			if !res.Active {
				logrus.WithField("query", query).Warn("filter selects nothing; rendering the whole plan")
			} else if focus == "" {
				s.FocusMatches()
			}
		}
		if focus != "" {
			id, err := profile.ParseNodeID(focus)
			if err != nil {
				return err
			}
			if !s.NavigateTo(id) {
				return fmt.Errorf("node %d not found in plan", id)
			}
		}

		var w io.Writer = os.Stdout
		if outPath != "" && outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer f.Close()
			w = f
		}

		if err := output.RenderHTML(w, s, output.HTMLOptions{Title: title, IncludeStyles: !bare}); err != nil {
			return err
		}
		if outPath != "" && outPath != "-" {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", outPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	addSourceFlags(viewCmd)
	viewCmd.Flags().StringP("query-id", "q", "", "Fetch the profile with this query id from the archive")
	viewCmd.Flags().String("filter", "", "Filter query to apply and frame")
	viewCmd.Flags().String("focus", "", "Node id to frame")
	viewCmd.Flags().StringP("output", "o", "", "Write the page to a file instead of stdout")
	viewCmd.Flags().String("title", "", "Page title")
	viewCmd.Flags().Bool("no-styles", false, "Omit the embedded stylesheet")
	viewCmd.Flags().Float64("width", 0, "Screen width in pixels (default from config)")
	viewCmd.Flags().Float64("height", 0, "Screen height in pixels (default from config)")
}
