package layout

import (
	"context"
	"slices"

	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/errors"
)

// Role is a column's structural role within its level rows.
type Role string

// Column roles.
const (
	RoleStart Role = "start"
	RoleMid   Role = "mid"
	RoleEnd   Role = "end"
)

// Level is one storey of a matrix.
type Level struct {
	Type      string  `json:"type"`
	Height    float64 `json:"height"`
	Elevation float64 `json:"elevation"`
}

// PositionedModule is a module placed inside a grid group.
type PositionedModule struct {
	Module catalog.ModuleSpec `json:"module"`
	// Index is the module's position in the source DNA sequence.
	Index int `json:"index"`
	// Offset is the z offset within the grid group.
	Offset float64 `json:"offset"`
}

// GridGroup is the cell of a matrix at one column and one level.
type GridGroup struct {
	Modules []PositionedModule `json:"modules"`
	Length  float64            `json:"length"`
}

// ColumnSpec is one matrix column: a grid group per level.
type ColumnSpec struct {
	Role     Role        `json:"role"`
	GridType string      `json:"grid_type"`
	Rows     []GridGroup `json:"rows"`
	Depth    float64     `json:"depth"`
	Offset   float64     `json:"offset"`
}

// DNAs returns the column's DNAs, level by level.
func (c ColumnSpec) DNAs() []string {
	var out []string
	for _, row := range c.Rows {
		for _, pm := range row.Modules {
			out = append(out, pm.Module.DNA)
		}
	}
	return out
}

// Matrix is the rectangular columns-by-levels arrangement of a house type.
type Matrix struct {
	SystemID    string       `json:"system_id"`
	SectionType string       `json:"section_type"`
	Levels      []Level      `json:"levels"`
	Columns     []ColumnSpec `json:"columns"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Depth       float64      `json:"depth"`
}

// DNAs returns the DNA sequence the matrix was built from.
func (m *Matrix) DNAs() []string {
	var out []string
	for li := range m.Levels {
		for _, col := range m.Columns {
			for _, pm := range col.Rows[li].Modules {
				out = append(out, pm.Module.DNA)
			}
		}
	}
	return out
}

// IsRectangular reports whether every column has one row per level.
func (m *Matrix) IsRectangular() bool {
	for _, col := range m.Columns {
		if len(col.Rows) != len(m.Levels) {
			return false
		}
	}
	return true
}

// BuildMatrix resolves dnas against cat and arranges them into a matrix.
//
// Unresolvable DNAs fail with CATALOG_ERROR. Malformed sequences (dangling
// rows, MID modules outside a row, rows with differing column sequences or
// mixed section types) fail with LAYOUT_ASSEMBLY_ERROR.
func BuildMatrix(ctx context.Context, cat catalog.Catalog, systemID string, dnas []string) (*Matrix, error) {
	if err := errors.ValidateSystemID(systemID); err != nil {
		return nil, err
	}
	if err := errors.ValidateDNASequence(dnas); err != nil {
		return nil, err
	}

	specs := make([]catalog.ModuleSpec, len(dnas))
	for i, dna := range dnas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		spec, err := cat.ResolveModule(ctx, systemID, dna)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalog, err, "resolve %s", dna)
		}
		specs[i] = spec
	}

	rows, err := splitRows(specs)
	if err != nil {
		return nil, err
	}

	m := &Matrix{SystemID: systemID, SectionType: specs[0].Structured.SectionType}
	for _, spec := range specs {
		if spec.Structured.SectionType != m.SectionType {
			return nil, errors.New(errors.ErrCodeLayoutAssembly,
				"mixed section types %s and %s", m.SectionType, spec.Structured.SectionType)
		}
		m.Width = max(m.Width, spec.Dimensions.Width)
	}

	var elevation float64
	for li, row := range rows {
		cols := splitColumns(row)
		if li == 0 {
			for _, c := range cols {
				m.Columns = append(m.Columns, ColumnSpec{Role: c.role, GridType: c.gridType})
			}
		} else if !sameShape(m.Columns, cols) {
			return nil, errors.New(errors.ErrCodeLayoutAssembly,
				"non-rectangular layout: level %d has columns %v, level 0 has %v",
				li, shapeOf(cols), shapeOfSpecs(m.Columns))
		}

		level := Level{Type: row[0].spec.Structured.LevelType, Elevation: elevation}
		for ci, c := range cols {
			var gg GridGroup
			for _, rm := range c.modules {
				gg.Modules = append(gg.Modules, PositionedModule{Module: rm.spec, Index: rm.index, Offset: gg.Length})
				gg.Length += rm.spec.Dimensions.Length
				level.Height = max(level.Height, rm.spec.Dimensions.Height)
			}
			m.Columns[ci].Rows = append(m.Columns[ci].Rows, gg)
		}
		m.Levels = append(m.Levels, level)
		elevation += level.Height
	}
	m.Height = elevation

	for ci := range m.Columns {
		col := &m.Columns[ci]
		for _, row := range col.Rows {
			col.Depth = max(col.Depth, row.Length)
		}
		col.Offset = m.Depth
		m.Depth += col.Depth
	}
	return m, nil
}

type rowModule struct {
	spec  catalog.ModuleSpec
	index int
}

type rowColumn struct {
	role     Role
	gridType string
	modules  []rowModule
}

// splitRows cuts the sequence into END-delimited rows.
func splitRows(specs []catalog.ModuleSpec) ([][]rowModule, error) {
	var (
		rows [][]rowModule
		cur  []rowModule
	)
	for i, spec := range specs {
		rm := rowModule{spec: spec, index: i}
		switch spec.Structured.PositionType {
		case catalog.PositionEnd:
			if cur == nil {
				cur = []rowModule{rm}
				continue
			}
			rows = append(rows, append(cur, rm))
			cur = nil
		case catalog.PositionMid:
			if cur == nil {
				return nil, errors.New(errors.ErrCodeLayoutAssembly, "MID module %s at index %d is outside a row", spec.DNA, i)
			}
			cur = append(cur, rm)
		default:
			return nil, errors.New(errors.ErrCodeLayoutAssembly,
				"module %s has unknown position type %q", spec.DNA, spec.Structured.PositionType)
		}
	}
	if cur != nil {
		return nil, errors.New(errors.ErrCodeLayoutAssembly,
			"row opened by %s at index %d is never closed", cur[0].spec.DNA, cur[0].index)
	}
	return rows, nil
}

// splitColumns groups a row into start, mid and end columns.
func splitColumns(row []rowModule) []rowColumn {
	last := len(row) - 1
	cols := []rowColumn{{role: RoleStart, gridType: row[0].spec.Structured.GridType, modules: row[:1]}}
	for _, rm := range row[1:last] {
		gt := rm.spec.Structured.GridType
		if n := len(cols) - 1; cols[n].role == RoleMid && cols[n].gridType == gt {
			cols[n].modules = append(cols[n].modules, rm)
			continue
		}
		cols = append(cols, rowColumn{role: RoleMid, gridType: gt, modules: []rowModule{rm}})
	}
	return append(cols, rowColumn{role: RoleEnd, gridType: row[last].spec.Structured.GridType, modules: row[last:]})
}

func sameShape(specs []ColumnSpec, cols []rowColumn) bool {
	return slices.Equal(shapeOfSpecs(specs), shapeOf(cols))
}

func shapeOf(cols []rowColumn) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c.role) + ":" + c.gridType
	}
	return out
}

func shapeOfSpecs(cols []ColumnSpec) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c.Role) + ":" + c.GridType
	}
	return out
}
