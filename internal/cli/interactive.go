package cli

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/house"
	"github.com/matzehuels/modhouse/pkg/stretch"
)

// defaultClipPresets are cycled by the "c" key.
var defaultClipPresets = []string{"none", "y=3", "y=3,z=4"}

// interactiveCommand creates the interactive stretching command.
func (c *CLI) interactiveCommand() *cobra.Command {
	var (
		step    float64
		presets []string
	)

	cmd := &cobra.Command{
		Use:     "interactive <house-type>",
		Aliases: []string{"tui"},
		Short:   "Stretch a house interactively",
		Long: `Open a terminal view of a house and stretch it with the keyboard.

Each clip preset is a comma-separated list of planes; "none" turns
clipping off.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clips, err := parseClipPresets(presets)
			if err != nil {
				return err
			}
			return c.runInteractive(cmd.Context(), args[0], step, clips)
		},
	}

	cmd.Flags().Float64Var(&step, "step", 0.5, "drag distance per key press, in metres")
	cmd.Flags().StringArrayVar(&presets, "clip-preset", defaultClipPresets, "clip preset cycled with c (repeatable)")
	cmd.ValidArgsFunction = completeHouseTypes
	return cmd
}

func parseClipPresets(presets []string) ([]cut.Settings, error) {
	out := make([]cut.Settings, 0, len(presets))
	for _, p := range presets {
		s, err := cut.ParseSettings(strings.Split(p, ","))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		out = append(out, cut.Settings{})
	}
	return out, nil
}

func (c *CLI) runInteractive(ctx context.Context, input string, step float64, clips []cut.Settings) error {
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

	var model *StretchModel
	h, err := house.New(ctx, house.Config{
		Catalog:  idx,
		Provider: c.provider(ch),
		Cuts:     cut.NewManager(cut.WithLogger(logger)),
		Strict:   c.Config.Strict,
		MaxDepth: c.Config.MaxDepth,
		OnSwap:   func(ev stretch.SwapEvent) { model.RecordSwap(ev) },
		Logger:   logger,
	}, ht)
	if err != nil {
		return err
	}
	defer h.Close()
	h.ShowHandles()

	model = NewStretchModel(ctx, h, step, clips)
	if clips[0].Active() {
		if err := h.SetClip(clips[0]); err != nil {
			return err
		}
	}

	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return err
	}
	snap := h.Snapshot()
	printSuccess("Final layout %s, %.2f × %.2f m", snap.SectionType.Code, snap.Width, snap.Depth)
	return nil
}
