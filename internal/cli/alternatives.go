package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modhouse/pkg/alts"
	"github.com/matzehuels/modhouse/pkg/layout"
)

// alternativesCommand creates the alternatives command.
func (c *CLI) alternativesCommand() *cobra.Command {
	var (
		byWidth bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:     "alternatives <house-type>",
		Aliases: []string{"alts"},
		Short:   "List the section-type alternatives of a house type",
		Long: `Build a house type and every section-type variant of it the catalog
offers. These are the layouts an x stretch can swap between.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAlternatives(cmd.Context(), args[0], byWidth, noCache)
		},
	}

	cmd.Flags().BoolVar(&byWidth, "by-width", false, "sort by section width instead of code")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the geometry cache")
	cmd.ValidArgsFunction = completeHouseTypes
	return cmd
}

func (c *CLI) runAlternatives(ctx context.Context, input string, byWidth, noCache bool) error {
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
	if err := ht.Validate(); err != nil {
		return err
	}
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer ch.Close()

	prog := newProgress(logger)
	asm := layout.NewAssembler(c.provider(ch), layout.WithCatalog(idx), layout.WithLogger(logger))
	m, err := layout.BuildMatrix(ctx, idx, ht.SystemID, ht.DNAs)
	if err != nil {
		return err
	}
	active, err := asm.Assemble(ctx, m)
	if err != nil {
		return err
	}
	defer active.Destroy()

	found, err := alts.NewResolver(idx, asm, alts.WithLogger(logger)).Resolve(ctx, active)
	if err != nil {
		return err
	}
	defer alts.Release(found, nil)
	prog.done(fmt.Sprintf("Resolved %d alternatives", len(found)))

	if byWidth {
		found = alts.ByWidth(found)
	}
	fmt.Println(alternativesTable(found))
	if len(found) <= 1 {
		printWarning("No alternatives: x stretching is inert for this house")
	}
	return nil
}

func alternativesTable(found []alts.Alternative) string {
	rows := make([][]string, len(found))
	for i, a := range found {
		mark := ""
		if a.Active {
			mark = iconSuccess
		}
		g := a.Group
		rows[i] = []string{
			mark,
			a.SectionType.Code,
			strconv.FormatFloat(a.SectionType.Width, 'f', -1, 64),
			strconv.Itoa(len(g.Columns())),
			fmt.Sprintf("%.2f", g.Width()),
			fmt.Sprintf("%.2f", g.Depth()),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Section", "Module width", "Columns", "Width", "Depth").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case found[row].Active:
				return StyleSuccess
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		}).
		Render()
}
