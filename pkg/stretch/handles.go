package stretch

import "github.com/matzehuels/modhouse/pkg/scene"

// handleSize is the edge length of a handle's box.
const handleSize = 0.4

// handles is the pair of drag handles of one engine: slot 0 for the start
// side, slot 1 for the end side.
type handles struct {
	objs     [2]*scene.Object
	attached bool
}

func newHandles(axis scene.Axis) *handles {
	h := &handles{}
	half := handleSize / 2
	for i, side := range []Side{SideStart, SideEnd} {
		obj := scene.New(scene.KindHandle, axis.String()+"-handle-"+side.String())
		obj.Bounds = scene.Box3{
			Min: scene.Vec3{X: -half, Y: -half, Z: -half},
			Max: scene.Vec3{X: half, Y: half, Z: half},
		}
		obj.Tags = scene.Tags{Category: axis.String(), Type: scene.TypeHandle}
		obj.SetVisible(false)
		h.objs[i] = obj
	}
	return h
}

func (h *handles) at(side Side) *scene.Object { return h.objs[side.index()] }

// attach adds the handles to the host scene once.
func (h *handles) attach(host Host) {
	if h.attached {
		return
	}
	for _, o := range h.objs {
		host.Attach(o)
	}
	h.attached = true
}

func (h *handles) setVisible(v bool) {
	for _, o := range h.objs {
		o.SetVisible(v)
	}
}

func (h *handles) visible() bool { return h.objs[0].Visible() }

// shift moves both handles apart along axis by d each.
func (h *handles) shift(axis scene.Axis, d float64) {
	s := h.at(SideStart)
	e := h.at(SideEnd)
	s.Position = s.Position.With(axis, s.Position.Get(axis)-d)
	e.Position = e.Position.With(axis, e.Position.Get(axis)+d)
}

func (h *handles) detach() {
	for _, o := range h.objs {
		o.Detach()
		o.SetVisible(false)
	}
	h.attached = false
}
