package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/vidmark/pkg/commands/options"
	"tableflip.dev/vidmark/pkg/runner/set"
)

func addSet(topLevel *cobra.Command) {
	vo := &options.VideoOptions{}
	bo := &options.BulletOptions{}
	ro := &options.ReorderOptions{}
	io := &options.IDOptions{}

	var ref string
	cmd := &cobra.Command{
		Use:   "set <video-id> <bullet>",
		Short: "Edit a bullet point's fields or position",
		Example: `
vidmark set dQw4w9WgXcQ 2 --time 01:15
vidmark set dQw4w9WgXcQ 2 --text "better phrasing" --duration 20
vidmark set dQw4w9WgXcQ 2 --up
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
			if ro.Up && ro.Down {
				return errors.New("--up and --down are mutually exclusive")
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Persistence.Close() }()

			s := set.Set{
				VideoID:   vo.VideoID,
				Ref:       ref,
				Timestamp: bo.Timestamp,
				Text:      bo.Text,
				Duration:  bo.Duration,
				Up:        ro.Up,
				Down:      ro.Down,
				ShowID:    io.ShowID,
				Service:   svc,
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

	options.AddBulletFieldArgs(cmd, bo)
	options.AddReorderArgs(cmd, ro)
	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
