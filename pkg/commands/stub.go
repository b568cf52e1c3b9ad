package commands

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/vidmark/pkg/config"
	"tableflip.dev/vidmark/pkg/runner/stub"
)

func addStub(topLevel *cobra.Command) {
	var probeDelay time.Duration

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a local summarizer service stub",
		Long: `Run a local implementation of the summarizer API with a seeded
demo video, a delayed metadata probe, and deterministic regenerate
jobs. Point vidmark at it with VIDMARK_API_URL.`,
		Example: `
vidmark stub
vidmark stub --probe-delay 10s
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s := stub.Stub{
				Addr:       cfg.Stub.Addr,
				Rate:       cfg.Stub.Rate,
				ProbeDelay: probeDelay,
				MinBullets: cfg.Editor.MinBullets,
			}
			return s.Do(ctx)
		},
	}

	cmd.Flags().DurationVar(&probeDelay, "probe-delay", 3*time.Second,
		"How long the metadata probe pretends to run.")

	topLevel.AddCommand(cmd)
}
