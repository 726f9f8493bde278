package layout

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/geometry"
	"github.com/matzehuels/modhouse/pkg/observability"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// Uncategorized is the category of elements the catalog knows nothing about.
const Uncategorized = "uncategorized"

// Assembler builds layout groups from matrices.
type Assembler struct {
	provider geometry.Provider
	catalog  catalog.Catalog
	logger   *log.Logger
}

// AssemblerOption configures an [Assembler].
type AssemblerOption func(*Assembler)

// WithCatalog sets the catalog used for element categories, section type
// records and vanilla modules.
func WithCatalog(cat catalog.Catalog) AssemblerOption {
	return func(a *Assembler) { a.catalog = cat }
}

// WithLogger sets the assembler's logger.
func WithLogger(l *log.Logger) AssemblerOption {
	return func(a *Assembler) { a.logger = l }
}

// NewAssembler creates an assembler fetching geometry from provider.
func NewAssembler(provider geometry.Provider, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		provider: provider,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Catalog returns the configured catalog, or nil.
func (a *Assembler) Catalog() catalog.Catalog { return a.catalog }

// Assemble builds a detached layout group from m. Columns are
// assembled concurrently, and so are the modules within each column; the
// first failure cancels the rest and no partial group is returned.
func (a *Assembler) Assemble(ctx context.Context, m *Matrix) (*Group, error) {
	if m == nil || len(m.Columns) == 0 {
		return nil, errors.New(errors.ErrCodeLayoutAssembly, "empty matrix")
	}
	if !m.IsRectangular() {
		return nil, errors.New(errors.ErrCodeLayoutAssembly, "non-rectangular matrix")
	}

	start := time.Now()
	observability.Assembly().OnAssembleStart(ctx, m.SystemID, len(m.Columns))

	columns := make([]*Column, len(m.Columns))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range m.Columns {
		g.Go(func() error {
			col, err := a.assembleColumn(gctx, m.SystemID, spec, m.Levels)
			if err != nil {
				return err
			}
			columns[i] = col
			return nil
		})
	}
	err := g.Wait()
	observability.Assembly().OnAssembleComplete(ctx, m.SystemID, time.Since(start), err)
	if err != nil {
		a.logger.Debug("assembly failed", "system", m.SystemID, "section", m.SectionType, "err", err)
		return nil, err
	}

	grp := &Group{
		matrix:      m,
		sectionType: a.sectionType(m),
		obj:         scene.New(scene.KindLayoutGroup, "layout-"+m.SectionType),
		columns:     columns,
	}
	for _, c := range columns {
		grp.obj.Add(c.obj)
	}
	a.logger.Debug("assembled layout", "system", m.SystemID, "section", m.SectionType,
		"columns", len(columns), "levels", len(m.Levels), "elapsed", time.Since(start))
	return grp, nil
}

// AssembleColumn builds a single detached column from spec.
func (a *Assembler) AssembleColumn(ctx context.Context, systemID string, spec ColumnSpec, levels []Level) (*Column, error) {
	if len(spec.Rows) != len(levels) {
		return nil, errors.New(errors.ErrCodeLayoutAssembly, "column has %d rows for %d levels", len(spec.Rows), len(levels))
	}
	return a.assembleColumn(ctx, systemID, spec, levels)
}

// AssembleVanillaColumn builds one filler column for a section type, with
// one vanilla module per level. The column's offset is zero; callers
// position it.
func (a *Assembler) AssembleVanillaColumn(ctx context.Context, systemID, sectionType string, levels []Level) (*Column, error) {
	if a.catalog == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "vanilla columns need a catalog")
	}
	spec := ColumnSpec{Role: RoleMid, GridType: "vanilla"}
	for _, lvl := range levels {
		mod, err := a.catalog.ResolveVanillaModule(ctx, systemID, sectionType, lvl.Type)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalog, err, "vanilla module for %s/%s", sectionType, lvl.Type)
		}
		spec.Rows = append(spec.Rows, GridGroup{
			Modules: []PositionedModule{{Module: mod, Index: -1}},
			Length:  mod.Dimensions.Length,
		})
		spec.Depth = max(spec.Depth, mod.Dimensions.Length)
	}
	return a.assembleColumn(ctx, systemID, spec, levels)
}

// VanillaDepth returns the depth of one vanilla column for a section type:
// the longest vanilla module over all levels.
func (a *Assembler) VanillaDepth(ctx context.Context, systemID, sectionType string, levels []Level) (float64, error) {
	if a.catalog == nil {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "vanilla columns need a catalog")
	}
	var depth float64
	for _, lvl := range levels {
		mod, err := a.catalog.ResolveVanillaModule(ctx, systemID, sectionType, lvl.Type)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeCatalog, err, "vanilla module for %s/%s", sectionType, lvl.Type)
		}
		depth = max(depth, mod.Dimensions.Length)
	}
	return depth, nil
}

type fetchSlot struct {
	level int
	pm    PositionedModule
}

func (a *Assembler) assembleColumn(ctx context.Context, systemID string, spec ColumnSpec, levels []Level) (*Column, error) {
	var slots []fetchSlot
	for li, row := range spec.Rows {
		for _, pm := range row.Modules {
			slots = append(slots, fetchSlot{level: li, pm: pm})
		}
	}

	modules := make([]*Module, len(slots))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range slots {
		g.Go(func() error {
			data, err := a.provider.FetchModuleGeometry(gctx, geometry.RefFor(s.pm.Module))
			if err != nil {
				if !errors.Is(err, errors.ErrCodeGeometryFetch) && gctx.Err() == nil {
					err = errors.Wrap(errors.ErrCodeGeometryFetch, err, "fetch %s", s.pm.Module.DNA)
				}
				return errors.Wrap(errors.ErrCodeLayoutAssembly, err, "module %s", s.pm.Module.DNA)
			}
			modules[i] = a.buildModule(systemID, s.pm, levels[s.level], data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	col := &Column{
		Spec:    spec,
		obj:     scene.New(scene.KindColumnGroup, string(spec.Role)+"-"+spec.GridType),
		modules: modules,
	}
	col.obj.Position = scene.Vec3{Z: spec.Offset}
	for _, m := range modules {
		col.obj.Add(m.obj)
	}
	return col, nil
}

func (a *Assembler) buildModule(systemID string, pm PositionedModule, level Level, data *geometry.Data) *Module {
	m := &Module{Spec: pm.Module, obj: scene.New(scene.KindModuleGroup, pm.Module.DNA)}
	m.obj.Position = scene.Vec3{Y: level.Elevation, Z: pm.Offset}
	for _, e := range data.Elements {
		mesh := scene.New(scene.KindElement, e.Name)
		mesh.Bounds = e.Bounds
		mesh.Tags = scene.Tags{Category: a.category(systemID, e.Name), Type: scene.TypeElement}
		m.obj.Add(mesh)
		m.elements = append(m.elements, mesh)
	}
	return m
}

func (a *Assembler) category(systemID, name string) string {
	if idx, ok := a.catalog.(catalog.ElementIndex); ok {
		if c, ok := idx.ElementCategory(systemID, name); ok && c != "" {
			return c
		}
	}
	return Uncategorized
}

func (a *Assembler) sectionType(m *Matrix) catalog.SectionType {
	if idx, ok := a.catalog.(catalog.SectionTypeIndex); ok {
		if st, ok := idx.SectionType(m.SystemID, m.SectionType); ok {
			return st
		}
	}
	return catalog.SectionType{Code: m.SectionType, Width: m.Width}
}
