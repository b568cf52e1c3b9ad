package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/vidmark/pkg/commands/options"
	"tableflip.dev/vidmark/pkg/runner/remove"
)

func addRemove(topLevel *cobra.Command) {
	vo := &options.VideoOptions{}
	io := &options.IDOptions{}

	var ref string
	cmd := &cobra.Command{
		Use:     "remove <video-id> <bullet>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a bullet point by position or id",
		Example: `
vidmark remove dQw4w9WgXcQ 2
vidmark remove dQw4w9WgXcQ 3f8a91c2
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires a video id and a bullet position or id")
			}
			vo.VideoID = args[0]
			ref = args[1]
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Persistence.Close() }()

			s := remove.Remove{
				VideoID: vo.VideoID,
				Ref:     ref,
				ShowID:  io.ShowID,
				Service: svc,
			}
			return output.HandleError(s.Do(context.Background()))
		},
	}

	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return videoCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
