package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modhouse/pkg/catalog"
)

// catalogCommand creates the catalog inspection command.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the module catalog",
		Long: `List the building systems of the catalog with their section types.

Use "catalog modules <system>" to list every module of one system.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, _, err := c.loadCatalog()
			if err != nil {
				return err
			}
			systems := idx.Systems()
			if len(systems) == 0 {
				printWarning("Catalog %s has no systems", c.Config.Catalog)
				return nil
			}
			for _, s := range systems {
				printKeyValue("System", StyleHighlight.Render(s.ID)+" "+StyleDim.Render(s.Name))
				codes := make([]string, len(s.SectionTypes))
				for i, st := range s.SectionTypes {
					codes[i] = fmt.Sprintf("%s (%sm)", st.Code, strconv.FormatFloat(st.Width, 'f', -1, 64))
				}
				printKeyValue("Sections", strings.Join(codes, ", "))
				printKeyValue("Modules", StyleNumber.Render(strconv.Itoa(s.Modules)))
				printNewline()
			}
			return nil
		},
	}

	cmd.AddCommand(c.catalogModulesCommand())
	return cmd
}

// catalogModulesCommand creates the "catalog modules" subcommand.
func (c *CLI) catalogModulesCommand() *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "modules <system>",
		Short: "List the modules of a system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, _, err := c.loadCatalog()
			if err != nil {
				return err
			}
			modules, err := idx.Modules(args[0])
			if err != nil {
				return err
			}
			if section != "" {
				modules = filterSection(modules, section)
			}
			fmt.Println(modulesTable(modules))
			printDetail("%d modules", len(modules))
			return nil
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "", "only list modules of this section type")
	return cmd
}

func filterSection(modules []catalog.ModuleSpec, section string) []catalog.ModuleSpec {
	var out []catalog.ModuleSpec
	for _, m := range modules {
		if strings.EqualFold(m.Structured.SectionType, section) {
			out = append(out, m)
		}
	}
	return out
}

// modulesTable renders modules as a bordered table.
func modulesTable(modules []catalog.ModuleSpec) string {
	rows := make([][]string, len(modules))
	for i, m := range modules {
		s := m.Structured
		rows[i] = []string{
			m.DNA,
			s.SectionType,
			string(s.PositionType),
			s.LevelType,
			s.GridType + strconv.Itoa(s.GridUnits),
			fmt.Sprintf("%g × %g × %g", m.Dimensions.Width, m.Dimensions.Height, m.Dimensions.Length),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("DNA", "Section", "Position", "Level", "Grid", "W × H × L").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
