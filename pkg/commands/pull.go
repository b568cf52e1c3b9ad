package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/vidmark/pkg/commands/options"
	"tableflip.dev/vidmark/pkg/runner/pull"
)

func addPull(topLevel *cobra.Command) {
	vo := &options.VideoOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "pull <video-id>",
		Short: "Pull a video's summary into a local editing session",
		Example: `
vidmark pull dQw4w9WgXcQ
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

			s := pull.Pull{
				VideoID: vo.VideoID,
				ShowID:  io.ShowID,
				Service: svc,
			}
			return output.HandleError(s.Do(context.Background()))
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
