package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/vidmark/pkg/commands/options"
	"tableflip.dev/vidmark/pkg/runner/save"
)

func addSave(topLevel *cobra.Command) {
	vo := &options.VideoOptions{}

	cmd := &cobra.Command{
		Use:   "save <video-id>",
		Short: "Push committed bullets and re-render the overlay",
		Example: `
vidmark save dQw4w9WgXcQ
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a video id")
			}
			vo.VideoID = args[0]
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Persistence.Close() }()

			s := save.Save{
				VideoID: vo.VideoID,
				Service: svc,
			}
			return output.HandleError(s.Do(context.Background()))
		},
	}

	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return videoCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
	}

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
