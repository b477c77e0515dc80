package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/TFMV/cohortviz/tui"
)

func tuiCmd() *cobra.Command {
	var (
		roster     string
		layoutName string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore the roster in the terminal",
		Long: `Tui runs the visualization inside the terminal: the same simulation,
search, and drag-to-pin interactions as the web page, drawn on a
character grid. Requires an interactive terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout := cfg.Graph.Layout
			if cmd.Flags().Changed("layout") {
				layout = layoutName
			}
			if roster == "" {
				roster = os.Getenv("COHORTVIZ_ROSTER")
			}

			return tui.Run(tui.Options{
				RosterPath: roster,
				Layout:     layout,
				Tune:       cfg.ApplyGraph,
			})
		},
	}

	cmd.Flags().StringVar(&roster, "roster", "", "Roster file to explore")
	cmd.Flags().StringVar(&layoutName, "layout", "force", "Layout algorithm: force, cluster, drift")

	return cmd
}
