package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/TFMV/cohortviz/ingest"
	"github.com/TFMV/cohortviz/models"
)

// Options configures an interactive terminal session.
type Options struct {
	RosterPath string // roster file; empty runs the bundled sample
	Layout     string

	// Tune, when set, adjusts the loaded graph before the session starts.
	Tune func(*models.Graph)
}

// Run loads the roster and drives the terminal session until the user
// quits. It refuses to start when stdout is not a terminal.
func Run(opts Options) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("interactive mode requires a terminal")
	}

	var graph *models.Graph
	var err error
	if opts.RosterPath != "" {
		graph, err = ingest.LoadFile(opts.RosterPath)
	} else {
		graph, err = ingest.SampleGraph()
	}
	if err != nil {
		return err
	}
	if opts.Tune != nil {
		opts.Tune(graph)
	}

	model, err := NewModel(graph, opts.Layout)
	if err != nil {
		return err
	}

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, err = program.Run()
	return err
}
