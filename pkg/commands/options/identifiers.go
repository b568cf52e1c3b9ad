// Package options defines shared flag helpers for CLI commands.
package options

import (
	"github.com/spf13/cobra"
)

// IDOptions toggles bullet id display in printed output.
type IDOptions struct {
	ShowID bool
}

// AddShowIDArgs wires the id display flag on the provided command.
func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVar(&o.ShowID, "show-ids", false,
		"Show bullet ids.")
}
