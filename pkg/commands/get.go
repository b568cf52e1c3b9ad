package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/vidmark/pkg/commands/options"
	"tableflip.dev/vidmark/pkg/glyph"
	"tableflip.dev/vidmark/pkg/runner/get"
)

func addGet(topLevel *cobra.Command) {
	vo := &options.VideoOptions{}
	io := &options.IDOptions{}
	bo := &options.BandOptions{}

	long := strings.Builder{}
	long.WriteString("Get a video's bullets, optionally filtered by confidence band.\n\n")
	long.WriteString("Band and aliases:\n")

	validArgs := make([]string, 0, 4)
	for _, g := range glyph.DefaultMarkers() {
		if g.Symbol == "" {
			continue
		}
		long.WriteString(fmt.Sprintf("%s: %s\n", g.Symbol, strings.Join(g.Aliases, ", ")))
		validArgs = append(validArgs, g.Noun)
	}

	cmd := &cobra.Command{
		Use:   "get <video-id> [band]",
		Short: "get a video's bullets",
		Long:  long.String(),
		Example: `
vidmark get dQw4w9WgXcQ
vidmark get dQw4w9WgXcQ high
vidmark get --list
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if vo.List {
				return nil
			}
			if len(args) < 1 {
				vo.List = true
				return nil
			}
			vo.VideoID = args[0]
			return options.ResolveBandArg(args[1:], bo)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Persistence.Close() }()

			s := get.Get{
				VideoID:    vo.VideoID,
				Band:       bo.Band,
				ShowID:     io.ShowID,
				ListVideos: vo.List,
				Service:    svc,
			}
			return output.HandleError(s.Do(context.Background()))
		},
	}

	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return videoCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
		}
		return validArgs, cobra.ShellCompDirectiveNoFileComp
	}

	options.AddListVideosArg(cmd, vo)
	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
