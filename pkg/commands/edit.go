package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/vidmark/pkg/commands/options"
	"tableflip.dev/vidmark/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	vo := &options.VideoOptions{}

	cmd := &cobra.Command{
		Use:   "edit <video-id>",
		Short: "open the interactive bullet editor",
		Example: `
vidmark edit dQw4w9WgXcQ
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

			e := edit.Edit{
				VideoID: vo.VideoID,
				Service: svc,
			}
			return e.Do(context.Background())
		},
	}

	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return videoCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
	}

	topLevel.AddCommand(cmd)
}
