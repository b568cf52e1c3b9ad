package options

import (
	"github.com/spf13/cobra"
)

// BulletOptions captures the editable bullet fields for add and set.
type BulletOptions struct {
	Timestamp string
	Text      string
	Duration  float64
}

// AddBulletFieldArgs wires the field flags on the provided command.
func AddBulletFieldArgs(cmd *cobra.Command, o *BulletOptions) {
	cmd.Flags().StringVarP(&o.Timestamp, "time", "t", "",
		"Timestamp in MM:SS.")
	cmd.Flags().StringVar(&o.Text, "text", "",
		"Bullet text.")
	cmd.Flags().Float64VarP(&o.Duration, "duration", "d", 0,
		"Visible duration in seconds.")
}

// ReorderOptions captures the reorder flags for set.
type ReorderOptions struct {
	Up   bool
	Down bool
}

// AddReorderArgs wires the reorder flags on the provided command.
func AddReorderArgs(cmd *cobra.Command, o *ReorderOptions) {
	cmd.Flags().BoolVar(&o.Up, "up", false,
		"Move the bullet one position earlier.")
	cmd.Flags().BoolVar(&o.Down, "down", false,
		"Move the bullet one position later.")
}
