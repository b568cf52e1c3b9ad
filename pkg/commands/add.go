package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/vidmark/pkg/commands/options"
	"tableflip.dev/vidmark/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	vo := &options.VideoOptions{}
	bo := &options.BulletOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "add <video-id> [text]",
		Short: "Add a bullet point",
		Example: `
vidmark add dQw4w9WgXcQ the chorus kicks in --time 00:43
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a video id")
			}
			vo.VideoID = args[0]
			if len(args) > 1 {
				bo.Text = strings.Join(args[1:], " ")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Persistence.Close() }()

			s := add.Add{
				VideoID:   vo.VideoID,
				Timestamp: bo.Timestamp,
				Text:      bo.Text,
				Duration:  bo.Duration,
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
	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
