package cli

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/house"
	mhio "github.com/matzehuels/modhouse/pkg/io"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// cutCommand creates the cut command: build a house, clip it and report
// what the cut manager did.
func (c *CLI) cutCommand() *cobra.Command {
	var (
		planes  []string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "cut <house-type>",
		Short: "Clip a house with cut planes",
		Long: `Build a house type, apply clip planes and print the clipped extent and
the cut manager statistics. A plane is axis=offset, e.g. y=3 cuts
everything above three metres.`,
		Example: `  modhouse cut examples/house.toml --plane y=3
  modhouse cut examples/house.toml --plane y=3 --plane z=4 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cut.ParseSettings(planes)
			if err != nil {
				return err
			}
			return c.runCut(cmd.Context(), args[0], settings, jsonOut)
		},
	}

	cmd.Flags().StringArrayVarP(&planes, "plane", "p", nil, "clip plane axis=offset (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the house snapshot as JSON")
	_ = cmd.MarkFlagRequired("plane")
	cmd.ValidArgsFunction = completeHouseTypes
	return cmd
}

func (c *CLI) runCut(ctx context.Context, input string, settings cut.Settings, jsonOut bool) error {
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	logger := loggerFromContext(ctx)

	idx, _, err := c.loadCatalog()
	if err != nil {
		return err
	}
	ht, err := loadHouseType(input)
	if err != nil {
		return err
	}
	ch, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer ch.Close()

	prog := newProgress(logger)
	h, err := house.New(ctx, house.Config{
		Catalog:  idx,
		Provider: c.provider(ch),
		Cuts:     cut.NewManager(cut.WithLogger(logger)),
		Strict:   c.Config.Strict,
		MaxDepth: c.Config.MaxDepth,
		Logger:   logger,
	}, ht)
	if err != nil {
		return err
	}
	defer h.Close()

	if err := h.SetClip(settings); err != nil {
		return err
	}
	prog.done("Clipped " + houseLabel(ht.Name, input))

	snap := h.Snapshot()
	if jsonOut {
		return mhio.WriteSnapshot(snap, os.Stdout)
	}

	clipped := visibleExtent(h.Root()).Size()
	printKeyValue("Planes", settings.String())
	printKeyValue("House", formatSize(snap.Width, snap.Height, snap.Depth))
	printKeyValue("Visible", formatSize(clipped.X, clipped.Y, clipped.Z))
	printKeyValue("Operations", StyleNumber.Render(strconv.Itoa(snap.Cut.Ops)))
	printKeyValue("Memo hits", StyleNumber.Render(strconv.Itoa(snap.Cut.Hits)))
	printKeyValue("Recomputes", StyleNumber.Render(strconv.Itoa(snap.Cut.Recomputes)))
	return nil
}

// visibleExtent is the world-space union of every visible element and brush.
func visibleExtent(root *scene.Object) scene.Box3 {
	box := scene.EmptyBox()
	root.Traverse(func(o *scene.Object) bool {
		if !o.Visible() {
			return false
		}
		if o.Kind == scene.KindElement || o.Kind == scene.KindBrush {
			if b := o.WorldBounds(); !b.IsEmpty() {
				box = box.Union(b)
			}
		}
		return true
	})
	if box.IsEmpty() {
		return scene.Box3{}
	}
	return box
}
