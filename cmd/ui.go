package cmd

import "github.com/fatih/color"

// Feedback colors shared by the commands.
var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	subtle = color.New(color.FgHiBlack)
)
