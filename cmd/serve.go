package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TFMV/cohortviz/server"
)

func init() {
	// Load .env file if present (for COHORTVIZ_ADDR / COHORTVIZ_ROSTER)
	_ = godotenv.Load()
}

func serveCmd() *cobra.Command {
	var (
		addr       string
		roster     string
		remote     string
		layoutName string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive graph over HTTP",
		Long: `Serve hosts the live visualization: the page at /, a WebSocket feed of
simulation frames at /ws, roster uploads at /upload, and JSON APIs under
/api. Without a roster it serves the bundled sample.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := cfg.Server
			if cmd.Flags().Changed("addr") {
				sc.Addr = addr
			} else if env := os.Getenv("COHORTVIZ_ADDR"); env != "" {
				sc.Addr = env
			}
			if cmd.Flags().Changed("watch") {
				sc.Watch = watch
			}
			if roster == "" {
				roster = os.Getenv("COHORTVIZ_ROSTER")
			}

			layout := cfg.Graph.Layout
			if cmd.Flags().Changed("layout") {
				layout = layoutName
			}

			srv, err := server.New(server.Config{
				Addr:       sc.Addr,
				RosterPath: roster,
				RosterURL:  remote,
				Layout:     layout,
				Watch:      sc.Watch,
				Tune:       cfg.ApplyGraph,
			})
			if err != nil {
				return err
			}

			subtle.Println("press ctrl+c to stop")
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&roster, "roster", "", "Roster file to serve")
	cmd.Flags().StringVar(&remote, "remote", "", "Roster URL fetched once at startup")
	cmd.Flags().StringVar(&layoutName, "layout", "force", "Layout algorithm: force, cluster, drift")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload when the roster file changes")

	return cmd
}
