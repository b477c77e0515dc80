package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TFMV/cohortviz/ingest"
	"github.com/TFMV/cohortviz/models"
	"github.com/TFMV/cohortviz/render"
)

// extensions maps output formats to file extensions for derived names.
var extensions = map[string]string{
	"svg":   "svg",
	"html":  "html",
	"json":  "json",
	"dot":   "dot",
	"ascii": "txt",
}

func renderCmd() *cobra.Command {
	var (
		output     string
		format     string
		layoutName string
		width      float64
		height     float64
		midnight   bool
		timestamp  bool
		remoteURL  string
	)

	cmd := &cobra.Command{
		Use:   "render [roster file]",
		Short: "Render a roster to a static file",
		Long: `Render settles the force simulation offline and writes a snapshot in the
chosen format: svg, html, json, dot, or ascii. Without a roster file the
bundled sample roster is rendered; --url fetches a remote JSON roster
instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			if cmd.Flags().Changed("format") {
				c.Render.Format = format
			}
			if cmd.Flags().Changed("layout") {
				c.Graph.Layout = layoutName
			}
			if cmd.Flags().Changed("width") {
				c.Graph.Width = width
			}
			if cmd.Flags().Changed("height") {
				c.Graph.Height = height
			}
			if cmd.Flags().Changed("timestamp") {
				c.Render.Timestamp = timestamp
			}
			if midnight {
				c.Render.Midnight = true
			}
			c.Render.Format = strings.ToLower(c.Render.Format)
			if err := c.Validate(); err != nil {
				return err
			}

			var (
				graph *models.Graph
				err   error
			)
			if remoteURL != "" {
				graph, err = fetchRemoteRoster(cmd.Context(), remoteURL, c.Render.Midnight)
			} else {
				var path string
				if len(args) == 1 {
					path = args[0]
				}
				graph, err = loadRoster(path, c.Render.Midnight)
			}
			if err != nil {
				return err
			}
			c.ApplyGraph(graph)

			opts := render.NewDefaultOptions(c.Render.Format)
			opts.Width = c.Graph.Width
			opts.Height = c.Graph.Height
			opts.Background = c.Render.Background
			opts.Timestamp = c.Render.Timestamp
			opts.NodeSize = c.Render.NodeSize
			opts.EdgeWidth = c.Render.EdgeWidth
			opts.FontSize = c.Render.FontSize
			opts.ShowLabels = c.Render.ShowLabels
			opts.MinZoom = c.Render.MinZoom
			opts.MaxZoom = c.Render.MaxZoom
			opts.Layout = c.Graph.Layout
			if c.Render.Midnight {
				opts.Background = ingest.MidnightPalette().Background
			}

			data, err := render.GenerateWithOptions(graph, opts)
			if err != nil {
				return err
			}

			if output == "" {
				output = "cohortviz." + extensions[opts.Format]
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			good.Printf("wrote %s (%d bytes, %d contributors)\n", output, len(data), len(graph.Contributors))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to cohortviz.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "Output format: svg, html, json, dot, ascii")
	cmd.Flags().StringVar(&layoutName, "layout", "force", "Layout algorithm: force, cluster, drift")
	cmd.Flags().Float64Var(&width, "width", 800, "Canvas width")
	cmd.Flags().Float64Var(&height, "height", 600, "Canvas height")
	cmd.Flags().BoolVar(&midnight, "midnight", false, "Use the dark palette")
	cmd.Flags().BoolVar(&timestamp, "timestamp", false, "Stamp the render time onto the output")
	cmd.Flags().StringVar(&remoteURL, "url", "", "Fetch the roster as JSON from a URL instead of a file")

	return cmd
}

// fetchRemoteRoster downloads a JSON roster, the offline counterpart of
// serve --remote. The fetch is one-shot: any failure aborts the render.
func fetchRemoteRoster(ctx context.Context, url string, midnight bool) (*models.Graph, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	data, err := ingest.FetchRoster(ctx, url)
	if err != nil {
		return nil, err
	}
	records, err := ingest.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decoding remote roster: %w", err)
	}
	palette := ingest.DefaultPalette()
	if midnight {
		palette = ingest.MidnightPalette()
	}
	return ingest.BuildGraph("Remote Roster", records, palette)
}

// loadRoster reads a roster file with the palette implied by midnight mode,
// falling back to the bundled sample.
func loadRoster(path string, midnight bool) (*models.Graph, error) {
	if path == "" {
		if midnight {
			return ingest.BuildGraph("Sample Roster", ingest.SampleRoster(), ingest.MidnightPalette())
		}
		return ingest.SampleGraph()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if midnight {
		format = "midnight-" + format
	}
	processor, err := ingest.GetProcessor(format)
	if err != nil {
		return nil, err
	}
	graph, err := processor.ProcessData(data)
	if err != nil {
		return nil, err
	}
	graph.Name = filepath.Base(path)
	return graph, nil
}
