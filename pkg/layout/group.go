package layout

import (
	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// Module is an assembled module: a module group holding tagged element meshes.
type Module struct {
	Spec     catalog.ModuleSpec
	obj      *scene.Object
	elements []*scene.Object
}

// Object returns the module group.
func (m *Module) Object() *scene.Object { return m.obj }

// Elements returns the module's element meshes.
func (m *Module) Elements() []*scene.Object { return m.elements }

// Column is an assembled column group.
type Column struct {
	Spec    ColumnSpec
	obj     *scene.Object
	modules []*Module
}

// ID returns the column's scene identity.
func (c *Column) ID() string { return c.obj.ID }

// Object returns the column group.
func (c *Column) Object() *scene.Object { return c.obj }

// Modules returns the column's modules, level by level.
func (c *Column) Modules() []*Module { return c.modules }

// DNAs returns the DNAs of the column's modules.
func (c *Column) DNAs() []string { return c.Spec.DNAs() }

// Depth returns the column's extent along z.
func (c *Column) Depth() float64 { return c.Spec.Depth }

// Elements returns every element mesh of the column.
func (c *Column) Elements() []*scene.Object {
	var out []*scene.Object
	for _, m := range c.modules {
		out = append(out, m.elements...)
	}
	return out
}

// Destroy detaches the column from its parent and drops its subtree.
func (c *Column) Destroy() {
	c.obj.Detach()
	c.modules = nil
}

// Group is an assembled layout: the composed 3D structure of one house type
// in one section type.
type Group struct {
	matrix      *Matrix
	sectionType catalog.SectionType
	obj         *scene.Object
	columns     []*Column
	destroyed   bool
}

// ID returns the group's scene identity.
func (g *Group) ID() string { return g.obj.ID }

// Object returns the layout group.
func (g *Group) Object() *scene.Object { return g.obj }

// Matrix returns the matrix the group was assembled from.
func (g *Group) Matrix() *Matrix { return g.matrix }

// SystemID returns the building system of the group.
func (g *Group) SystemID() string { return g.matrix.SystemID }

// SectionType returns the group's section type.
func (g *Group) SectionType() catalog.SectionType { return g.sectionType }

// DNAs returns the group's DNA sequence.
func (g *Group) DNAs() []string { return g.matrix.DNAs() }

// Columns returns the group's columns in z order.
func (g *Group) Columns() []*Column { return g.columns }

// Destroyed reports whether [Group.Destroy] was called.
func (g *Group) Destroyed() bool { return g.destroyed }

// Width returns the group's extent along x.
func (g *Group) Width() float64 { return g.extent().Size().X }

// Height returns the group's extent along y.
func (g *Group) Height() float64 { return g.extent().Size().Y }

// Depth returns the group's extent along z. It follows bookend
// translations made by the Z stretch engine.
func (g *Group) Depth() float64 { return g.extent().Size().Z }

// extent is the union of the group's own columns; foreign children such as
// vanilla columns and handles do not count.
func (g *Group) extent() scene.Box3 {
	box := scene.EmptyBox()
	for _, c := range g.columns {
		ext := c.obj.Extent()
		if !ext.IsEmpty() {
			box = box.Union(ext.Translate(c.obj.Position))
		}
	}
	return box
}

// Bookends partitions the columns into start, mids and end. ok is false for
// groups with fewer than two columns.
func (g *Group) Bookends() (start *Column, mids []*Column, end *Column, ok bool) {
	n := len(g.columns)
	if n < 2 {
		return nil, nil, nil, false
	}
	return g.columns[0], g.columns[1 : n-1], g.columns[n-1], true
}

// Elements returns every element mesh of the group.
func (g *Group) Elements() []*scene.Object {
	var out []*scene.Object
	for _, c := range g.columns {
		out = append(out, c.Elements()...)
	}
	return out
}

// Destroy detaches the group from the scene and releases its columns.
// Destroying twice is a no-op.
func (g *Group) Destroy() {
	if g.destroyed {
		return
	}
	g.destroyed = true
	g.obj.Detach()
	for _, c := range g.columns {
		c.Destroy()
	}
	g.columns = nil
}
