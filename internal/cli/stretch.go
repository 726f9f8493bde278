package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/modhouse/pkg/pipeline"
)

// stretchCommand creates the stretch command: build a house type and replay
// a gesture plan on it.
func (c *CLI) stretchCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "stretch <house-type>",
		Short: "Stretch a house with a gesture plan",
		Long: `Build a house type, replay stretch gestures on it and write the result.

Each gesture is axis:side:deltas. The axis is x (swap section types) or z
(extend the bookends), the side is start or end and the deltas are the
incremental drag distances in metres reported while dragging. Gestures run
in order; each one starts, progresses through its deltas and ends.`,
		Example: `  modhouse stretch examples/house.toml -g x:end:1.5
  modhouse stretch examples/house.toml -g x:end:1,1 -g z:end:1.2 --clip y=3 -f json,svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := pipeline.ParseGestures(opts.gestures); err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringArrayVarP(&opts.gestures, "gesture", "g", nil, "gesture axis:side:deltas, e.g. x:end:1.5 (repeatable)")
	_ = cmd.MarkFlagRequired("gesture")
	return cmd
}
