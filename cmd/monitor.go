package cmd

import (
	"github.com/spf13/cobra"
)

// monitor is an explicit alias of the root behavior so scripts can spell the
// intent out.
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the predictive monitoring engine",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
