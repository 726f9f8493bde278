package stretch

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/layout"
	"github.com/matzehuels/modhouse/pkg/observability"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// floorEpsilon absorbs float error in the vanilla column count so that an
// exact multiple of the vanilla depth is not rounded down.
const floorEpsilon = 1e-9

// zInit is fixed when the engine is armed.
type zInit struct {
	group        *layout.Group
	start, end   *layout.Column
	vanilla      []*layout.Column
	vanillaDepth float64
	// startInner and endInner are the untranslated inner edges of the
	// bookends, where the fixed columns end.
	startInner, endInner float64
}

func (in *zInit) inert() bool { return in.start == nil }

// inner returns the edge the vanilla columns on side extend from.
func (in *zInit) inner(side Side) float64 {
	if side == SideStart {
		return in.startInner
	}
	return in.endInner
}

// bookend returns the column dragged from side.
func (in *zInit) bookend(side Side) *layout.Column {
	if side == SideStart {
		return in.start
	}
	return in.end
}

type zProgress struct {
	delta float64
}

type zState interface{ phase() Phase }

type zIdle struct{}

type zArmed struct{ init *zInit }

type zDragging struct {
	init     *zInit
	side     Side
	origin   float64
	progress zProgress
}

func (zIdle) phase() Phase      { return PhaseIdle }
func (*zArmed) phase() Phase    { return PhaseArmed }
func (*zDragging) phase() Phase { return PhaseDragging }

// Z is the continuous bookend extension engine.
type Z struct {
	base
	state       zState
	wantHandles bool
}

// NewZ creates an idle Z engine.
func NewZ(host Host, opts Options) *Z {
	return &Z{base: newBase(scene.AxisZ, host, opts), state: zIdle{}}
}

// VanillaCount returns how many vanilla columns of vanillaDepth fit between
// depth and maxDepth. It is never negative.
func VanillaCount(maxDepth, depth, vanillaDepth float64) int {
	if maxDepth <= 0 || vanillaDepth <= 0 || maxDepth <= depth {
		return 0
	}
	return int(math.Floor((maxDepth-depth)/vanillaDepth + floorEpsilon))
}

// Init partitions the active layout into bookends and mid columns and, when
// a maximum depth and a vanilla source are configured, pre-builds the
// hidden vanilla columns in parallel. Layouts with fewer than two columns
// leave the engine armed but inert. On failure the engine keeps its
// previous state.
func (e *Z) Init(ctx context.Context) error {
	if d, ok := e.state.(*zDragging); ok {
		return e.precondition("init", d.phase())
	}
	g := e.host.ActiveLayout()
	if g == nil {
		return errors.New(errors.ErrCodeNoActiveLayout, "z stretch: no active layout")
	}

	in := &zInit{group: g}
	start, _, end, ok := g.Bookends()
	if ok {
		in.start, in.end = start, end
		in.startInner = start.Spec.Offset + start.Spec.Depth
		in.endInner = end.Spec.Offset
		vanilla, depth, err := e.buildVanilla(ctx, g)
		if err != nil {
			return err
		}
		in.vanilla, in.vanillaDepth = vanilla, depth
	}

	e.release()
	for _, c := range in.vanilla {
		c.Object().SetVisible(false)
		g.Object().Add(c.Object())
		e.register(c)
	}
	e.state = &zArmed{init: in}

	e.placeHandles(in)
	e.handles.setVisible(e.wantHandles && !in.inert())
	e.logger.Debug("armed", "inert", in.inert(), "vanilla", len(in.vanilla), "depth", g.Depth())
	return nil
}

func (e *Z) buildVanilla(ctx context.Context, g *layout.Group) ([]*layout.Column, float64, error) {
	src := e.opts.VanillaSource
	if e.opts.MaxDepth <= 0 || src == nil {
		return nil, 0, nil
	}
	m := g.Matrix()
	code := g.SectionType().Code
	vd, err := src.VanillaDepth(ctx, m.SystemID, code, m.Levels)
	if err != nil {
		return nil, 0, err
	}
	n := VanillaCount(e.opts.MaxDepth, g.Depth(), vd)
	if n == 0 {
		return nil, vd, nil
	}

	cols := make([]*layout.Column, n)
	eg, gctx := errgroup.WithContext(ctx)
	for i := range cols {
		eg.Go(func() error {
			c, err := src.AssembleVanillaColumn(gctx, m.SystemID, code, m.Levels)
			if err != nil {
				return err
			}
			cols[i] = c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		for _, c := range cols {
			if c != nil {
				c.Destroy()
			}
		}
		return nil, 0, err
	}
	return cols, vd, nil
}

func (e *Z) placeHandles(in *zInit) {
	e.handles.attach(e.host)
	if in.inert() {
		return
	}
	y := in.group.Height() / 2
	e.handles.at(SideStart).Position = scene.Vec3{Y: y, Z: in.start.Object().Position.Z}
	e.handles.at(SideEnd).Position = scene.Vec3{Y: y, Z: in.end.Object().Position.Z + in.end.Depth()}
}

// GestureStart reveals the vanilla columns contiguously behind the bookend
// on side, extending outward from the edge of the fixed columns. A bookend
// moved by an earlier gesture does not shift that edge.
func (e *Z) GestureStart(side Side) error {
	a, ok := e.state.(*zArmed)
	if !ok {
		return e.precondition("gesture start", e.state.phase())
	}
	if !side.valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid side %d", side)
	}
	in := a.init
	if in.inert() {
		return nil
	}

	bookend := in.bookend(side)
	inner := in.inner(side)
	members := make([]cut.Member, 0, len(in.vanilla))
	for i, c := range in.vanilla {
		z := inner + float64(i)*in.vanillaDepth
		if side == SideStart {
			z = inner - float64(i+1)*in.vanillaDepth
		}
		c.Object().Position = scene.Vec3{Z: z}
		c.Object().SetVisible(true)
		members = append(members, c)
	}
	e.prepareCuts(members...)

	e.host.GestureStarted(scene.AxisZ)
	e.state = &zDragging{init: in, side: side, origin: bookend.Object().Position.Z}
	observability.Stretch().OnGestureStart(e.axis.String(), int(side))
	e.host.RequestRedraw()
	return nil
}

// GestureProgress moves the selected bookend by the cumulative delta.
// Positive deltas extend the layout on either side. The translation is
// not clamped.
func (e *Z) GestureProgress(delta float64) error {
	d, ok := e.state.(*zDragging)
	if !ok {
		if a, armed := e.state.(*zArmed); armed && a.init.inert() {
			return nil
		}
		return e.precondition("gesture progress", e.state.phase())
	}
	d.progress.delta += delta
	shift := float64(d.side) * d.progress.delta

	bookend := d.init.bookend(d.side)
	bookend.Object().Position.Z = d.origin + shift

	h := e.handles.at(d.side)
	h.Position.Z = bookend.Object().Position.Z
	if d.side == SideEnd {
		h.Position.Z += bookend.Depth()
	}
	e.host.RequestRedraw()
	return nil
}

// GestureEnd ends the drag. The bookend keeps its translation; there is
// nothing to commit.
func (e *Z) GestureEnd(ctx context.Context) error {
	d, ok := e.state.(*zDragging)
	if !ok {
		if a, armed := e.state.(*zArmed); armed && a.init.inert() {
			return nil
		}
		return e.precondition("gesture end", e.state.phase())
	}
	e.state = &zArmed{init: d.init}
	e.host.GestureEnded(scene.AxisZ)
	observability.Stretch().OnGestureEnd(e.axis.String(), false)
	e.logger.Debug("gesture end", "side", d.side, "delta", d.progress.delta, "depth", d.init.group.Depth())
	return nil
}

// ShowHandles shows the handles unless the engine is inert.
func (e *Z) ShowHandles() {
	e.wantHandles = true
	if a, ok := e.state.(*zArmed); ok && !a.init.inert() {
		e.handles.setVisible(true)
	}
}

// HideHandles hides the handles.
func (e *Z) HideHandles() {
	e.wantHandles = false
	e.handles.setVisible(false)
}

// Cleanup destroys the vanilla columns and handles and returns to idle.
func (e *Z) Cleanup() {
	e.release()
	e.handles.detach()
	e.state = zIdle{}
}

func (e *Z) release() {
	var in *zInit
	switch s := e.state.(type) {
	case *zArmed:
		in = s.init
	case *zDragging:
		in = s.init
	default:
		return
	}
	for _, c := range in.vanilla {
		e.forget(c)
		c.Destroy()
	}
	in.vanilla = nil
}

// Vanilla returns the pre-built vanilla columns.
func (e *Z) Vanilla() []*layout.Column {
	switch s := e.state.(type) {
	case *zArmed:
		return s.init.vanilla
	case *zDragging:
		return s.init.vanilla
	}
	return nil
}

// Status implements [Engine].
func (e *Z) Status() Status {
	st := Status{Axis: e.axis.String(), Phase: e.state.phase().String(), Handles: e.handles.visible(), Inert: true}
	switch s := e.state.(type) {
	case *zArmed:
		st.Inert = s.init.inert()
		st.Vanilla = len(s.init.vanilla)
	case *zDragging:
		st.Inert = false
		st.Vanilla = len(s.init.vanilla)
		st.Side = s.side.String()
		st.Offset = float64(s.side) * s.progress.delta
	}
	return st
}

var _ Engine = (*Z)(nil)
