package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

var (
	output = &base.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "vidmark",
		Short: base.Wrap80("Edit timestamped bullet-point annotations for videos."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addPull(topLevel)
	addGet(topLevel)
	addEdit(topLevel)
	addAdd(topLevel)
	addRemove(topLevel)
	addSet(topLevel)
	addSave(topLevel)
	addStub(topLevel)
	addKey(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
