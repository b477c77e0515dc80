// Package cmd wires the cohortviz commands together.
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/TFMV/cohortviz/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	cfgPath   string
	debugMode bool
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cohortviz",
	Short: "Interactive contributor graphs grouped by graduation cohort",
	Long: `cohortviz turns a roster of contributors into a force-directed graph
whose cohorts form rings. Render it to a static file, serve it live
in the browser, or explore it in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = c

		if debugMode {
			log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)
			log.Println("Debug mode enabled")
		} else {
			log.SetFlags(log.LstdFlags)
		}
		return nil
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to a cohortviz.toml file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		renderCmd(),
		serveCmd(),
		tuiCmd(),
		versionCmd(),
	)
}

// Execute runs the selected command and reports its error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		bad.Fprintf(os.Stderr, "cohortviz: %v\n", err)
	}
	return err
}
