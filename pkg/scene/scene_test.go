package scene

import "testing"

func TestBox3(t *testing.T) {
	a := Box3{Min: Vec3{0, 0, 0}, Max: Vec3{2, 2, 2}}
	b := Box3{Min: Vec3{1, 1, 1}, Max: Vec3{3, 3, 3}}

	if got := a.Intersect(b); got != (Box3{Min: Vec3{1, 1, 1}, Max: Vec3{2, 2, 2}}) {
		t.Errorf("Intersect = %+v", got)
	}
	if got := a.Union(b); got != (Box3{Min: Vec3{0, 0, 0}, Max: Vec3{3, 3, 3}}) {
		t.Errorf("Union = %+v", got)
	}
	if !a.Intersect(Box3{Min: Vec3{5, 5, 5}, Max: Vec3{6, 6, 6}}).IsEmpty() {
		t.Error("disjoint boxes should intersect to empty")
	}
	if !EmptyBox().IsEmpty() {
		t.Error("EmptyBox should be empty")
	}
	if got := EmptyBox().Union(a); got != a {
		t.Errorf("EmptyBox should be the union identity, got %+v", got)
	}
	if got := a.Size(); got != (Vec3{2, 2, 2}) {
		t.Errorf("Size = %+v", got)
	}
}

func TestObjectTree(t *testing.T) {
	root := New(KindGroup, "root")
	col := New(KindColumnGroup, "col")
	col.Position = Vec3{Z: 5}
	mesh := New(KindElement, "floor")
	mesh.Position = Vec3{Y: 1}
	mesh.Bounds = Box3{Min: Vec3{-1, 0, 0}, Max: Vec3{1, 0.2, 2}}

	root.Add(col)
	col.Add(mesh)

	if mesh.Parent() != col || col.Parent() != root {
		t.Fatal("parents not wired")
	}
	if got := mesh.WorldPosition(); got != (Vec3{0, 1, 5}) {
		t.Errorf("WorldPosition = %+v", got)
	}
	if got := mesh.WorldBounds(); got.Min != (Vec3{-1, 1, 5}) || got.Max != (Vec3{1, 1.2, 7}) {
		t.Errorf("WorldBounds = %+v", got)
	}
	if got := root.Extent(); got.Min.Z != 5 || got.Max.Z != 7 {
		t.Errorf("Extent = %+v", got)
	}
	if n := len(root.Leaves(KindElement)); n != 1 {
		t.Errorf("Leaves = %d, want 1", n)
	}

	col.SetVisible(false)
	if mesh.EffectivelyVisible() {
		t.Error("mesh under hidden column should not be effectively visible")
	}
	if !mesh.Visible() {
		t.Error("own flag should be untouched")
	}

	other := New(KindGroup, "other")
	other.Add(col)
	if len(root.Children()) != 0 || col.Parent() != other {
		t.Error("Add should reparent")
	}
	col.Detach()
	if col.Parent() != nil || len(other.Children()) != 0 {
		t.Error("Detach should remove from parent")
	}
}

func TestIdentityIsUnique(t *testing.T) {
	a, b := New(KindGroup, "a"), New(KindGroup, "a")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids should be unique and non-empty: %q %q", a.ID, b.ID)
	}
}

func TestVec3Axis(t *testing.T) {
	v := Vec3{1, 2, 3}
	if v.Get(AxisY) != 2 {
		t.Error("Get(AxisY)")
	}
	if got := v.With(AxisZ, 9); got != (Vec3{1, 2, 9}) {
		t.Errorf("With = %+v", got)
	}
}
