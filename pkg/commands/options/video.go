package options

import (
	"github.com/spf13/cobra"
)

// VideoOptions captures common video selection flags for commands.
type VideoOptions struct {
	VideoID string
	List    bool
}

// AddListVideosArg registers the flag that lists stored sessions.
func AddListVideosArg(cmd *cobra.Command, o *VideoOptions) {
	cmd.Flags().BoolVar(&o.List, "list", false,
		"List all pulled videos.")
}
