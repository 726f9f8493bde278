// Package scene provides the opaque, composable scene objects the
// configurator core hands to an external rendering engine.
//
// The core never draws. It builds trees of [Object] values (layout groups,
// column groups, module groups, element meshes, stretch handles and clip
// brushes), toggles their visibility and positions, and asks a [Renderer]
// to redraw when something changed. Objects only carry what the core needs
// to reason about: identity, kind, tags, local position and local bounds.
//
// Objects are not safe for concurrent mutation. Assemblers build disjoint
// subtrees concurrently and attach them after the join.
package scene

import (
	"math"

	"github.com/google/uuid"
)

// Vec3 is a point or offset in metres.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Axis selects a coordinate axis.
type Axis int

// Axes.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Get returns the component of v along a.
func (v Vec3) Get(a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// With returns v with the component along a replaced by f.
func (v Vec3) With(a Axis, f float64) Vec3 {
	switch a {
	case AxisX:
		v.X = f
	case AxisY:
		v.Y = f
	default:
		v.Z = f
	}
	return v
}

// Box3 is an axis-aligned box. A box with any Min component greater than
// the matching Max component is empty.
type Box3 struct {
	Min, Max Vec3
}

// EmptyBox returns the identity for [Box3.Union].
func EmptyBox() Box3 {
	inf := math.Inf(1)
	return Box3{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// IsEmpty reports whether the box encloses no volume.
func (b Box3) IsEmpty() bool {
	return b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y || b.Min.Z >= b.Max.Z
}

// Size returns the box extents.
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Translate returns the box moved by d.
func (b Box3) Translate(d Vec3) Box3 {
	return Box3{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Union returns the smallest box enclosing b and o.
func (b Box3) Union(o Box3) Box3 {
	return Box3{
		Min: Vec3{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Max: Vec3{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Intersect returns the overlap of b and o; the result may be empty.
func (b Box3) Intersect(o Box3) Box3 {
	return Box3{
		Min: Vec3{math.Max(b.Min.X, o.Min.X), math.Max(b.Min.Y, o.Min.Y), math.Max(b.Min.Z, o.Min.Z)},
		Max: Vec3{math.Min(b.Max.X, o.Max.X), math.Min(b.Max.Y, o.Max.Y), math.Min(b.Max.Z, o.Max.Z)},
	}
}

// Kind classifies scene objects.
type Kind int

// Object kinds.
const (
	KindGroup Kind = iota
	KindLayoutGroup
	KindColumnGroup
	KindModuleGroup
	KindElement
	KindHandle
	KindBrush
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindLayoutGroup:
		return "layout"
	case KindColumnGroup:
		return "column"
	case KindModuleGroup:
		return "module"
	case KindElement:
		return "element"
	case KindHandle:
		return "handle"
	case KindBrush:
		return "brush"
	default:
		return "unknown"
	}
}

// Tag types attached to leaf objects.
const (
	TypeElement = "element"
	TypeHandle  = "stretch-handle"
	TypeBrush   = "clipped-brush"
)

// Tags is the metadata attached to leaf meshes.
type Tags struct {
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Object is a node in the scene tree.
type Object struct {
	ID       string
	Name     string
	Kind     Kind
	Tags     Tags
	Position Vec3

	// Bounds is the object's own geometry in local coordinates. Groups
	// leave it empty and derive their extent from children.
	Bounds Box3

	visible  bool
	parent   *Object
	children []*Object
}

// New creates a visible object with a fresh identity.
func New(kind Kind, name string) *Object {
	return &Object{
		ID:      uuid.NewString(),
		Name:    name,
		Kind:    kind,
		Bounds:  EmptyBox(),
		visible: true,
	}
}

// Add attaches child, detaching it from any previous parent.
func (o *Object) Add(child *Object) {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = o
	o.children = append(o.children, child)
}

// Remove detaches child if it is a direct child of o.
func (o *Object) Remove(child *Object) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Detach removes o from its parent, if any.
func (o *Object) Detach() {
	if o.parent != nil {
		o.parent.Remove(o)
	}
}

// Parent returns the parent object, or nil for roots.
func (o *Object) Parent() *Object { return o.parent }

// Children returns the direct children. The slice must not be modified.
func (o *Object) Children() []*Object { return o.children }

// Visible reports the object's own visibility flag.
func (o *Object) Visible() bool { return o.visible }

// SetVisible sets the object's own visibility flag.
func (o *Object) SetVisible(v bool) { o.visible = v }

// EffectivelyVisible reports whether o and all of its ancestors are visible.
func (o *Object) EffectivelyVisible() bool {
	for n := o; n != nil; n = n.parent {
		if !n.visible {
			return false
		}
	}
	return true
}

// Traverse calls fn for o and every descendant, depth first. Returning
// false from fn skips the object's subtree.
func (o *Object) Traverse(fn func(*Object) bool) {
	if !fn(o) {
		return
	}
	for _, c := range o.children {
		c.Traverse(fn)
	}
}

// WorldPosition returns the object's position in root coordinates.
func (o *Object) WorldPosition() Vec3 {
	var p Vec3
	for n := o; n != nil; n = n.parent {
		p = p.Add(n.Position)
	}
	return p
}

// WorldBounds returns the object's own bounds in root coordinates.
func (o *Object) WorldBounds() Box3 {
	return o.Bounds.Translate(o.WorldPosition())
}

// Extent returns the union of all non-empty descendant bounds in o's
// local coordinates, including o's own bounds.
func (o *Object) Extent() Box3 {
	box := o.Bounds
	for _, c := range o.children {
		ext := c.Extent()
		if ext.IsEmpty() {
			continue
		}
		box = box.Union(ext.Translate(c.Position))
	}
	return box
}

// Leaves returns every descendant of the given kind, depth first.
func (o *Object) Leaves(kind Kind) []*Object {
	var out []*Object
	o.Traverse(func(n *Object) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Renderer is the rendering collaborator.
type Renderer interface {
	RequestRedraw()
}

// NopRenderer ignores redraw requests.
type NopRenderer struct{}

// RequestRedraw does nothing.
func (NopRenderer) RequestRedraw() {}

// CountingRenderer counts redraw requests.
type CountingRenderer struct {
	Redraws int
}

// RequestRedraw increments the counter.
func (r *CountingRenderer) RequestRedraw() { r.Redraws++ }
