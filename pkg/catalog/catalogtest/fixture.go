// Package catalogtest provides an in-memory fixture catalog for tests.
//
// The fixture system "skylark" has section types W3..W6 (widths 3..6), which
// are fully interchangeable, plus W7, which only has bookend modules and is
// therefore never a compatible alternative for a house with mid columns.
package catalogtest

import (
	"fmt"

	"github.com/matzehuels/modhouse/pkg/catalog"
)

// SystemID is the fixture system identifier.
const SystemID = "skylark"

// Level heights of the fixture system.
const (
	GroundHeight = 2.8
	TopHeight    = 2.6
)

// GridLength is the length of one grid unit.
const GridLength = 1.2

// Widths lists the interchangeable section widths.
var Widths = []int{3, 4, 5, 6}

// DNA builds a fixture DNA code, e.g. DNA(4, "END", "F", "A", 1) = "W4-END-F-A1".
func DNA(width int, pos, level, grid string, units int) string {
	return fmt.Sprintf("W%d-%s-%s-%s%d", width, pos, level, grid, units)
}

// TwoStorey returns the fixture house type for a section width:
// four columns (start, B-run, C, end) over two levels.
func TwoStorey(width int) []string {
	var dnas []string
	for _, level := range []string{"F", "T"} {
		dnas = append(dnas,
			DNA(width, "END", level, "A", 1),
			DNA(width, "MID", level, "B", 1),
			DNA(width, "MID", level, "B", 1),
			DNA(width, "MID", level, "C", 2),
			DNA(width, "END", level, "A", 1),
		)
	}
	return dnas
}

// Bungalow returns a single-level house type with only the two bookends.
func Bungalow(width int) []string {
	return []string{
		DNA(width, "END", "F", "A", 1),
		DNA(width, "END", "F", "A", 1),
	}
}

// SystemDef returns the fixture system definition.
func SystemDef() catalog.SystemDef {
	def := catalog.SystemDef{
		ID:   SystemID,
		Name: "Skylark",
		Elements: []catalog.ElementDef{
			{Name: "floor", Category: "Structure"},
			{Name: "wall-left", Category: "Cladding"},
			{Name: "wall-right", Category: "Cladding"},
			{Name: "roof", Category: "Roofing"},
		},
	}
	heights := map[string]float64{"F": GroundHeight, "T": TopHeight}
	for _, w := range append(append([]int{}, Widths...), 7) {
		code := fmt.Sprintf("W%d", w)
		def.SectionTypes = append(def.SectionTypes, catalog.SectionType{Code: code, Width: float64(w)})
		for _, level := range []string{"F", "T"} {
			add := func(pos catalog.PositionType, grid string, units int, vanilla bool) {
				def.Modules = append(def.Modules, catalog.ModuleDef{
					DNA:          DNA(w, string(pos), level, grid, units),
					SectionType:  code,
					PositionType: pos,
					LevelType:    level,
					GridType:     grid,
					GridUnits:    units,
					Width:        float64(w),
					Height:       heights[level],
					Length:       float64(units) * GridLength,
					Vanilla:      vanilla,
				})
			}
			add(catalog.PositionEnd, "A", 1, false)
			if w == 7 {
				continue
			}
			add(catalog.PositionMid, "B", 1, false)
			add(catalog.PositionMid, "C", 2, false)
			add(catalog.PositionMid, "V", 1, true)
		}
	}
	return def
}

// Index returns a fresh index holding the fixture system.
func Index() *catalog.Index {
	idx := catalog.NewIndex()
	if err := idx.AddSystem(SystemDef()); err != nil {
		panic(err)
	}
	return idx
}
