package stretch

import (
	"context"

	"github.com/matzehuels/modhouse/pkg/alts"
	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/layout"
	"github.com/matzehuels/modhouse/pkg/observability"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// xInit is fixed when the engine is armed.
type xInit struct {
	alts         []alts.Alternative // by width
	minWidth     float64
	maxWidth     float64
	initialWidth float64
	activeIndex  int
}

func (in *xInit) inert() bool { return len(in.alts) <= 1 }

// xProgress is mutated on every pointer move.
type xProgress struct {
	offset float64
	index  int
}

type xState interface{ phase() Phase }

type xIdle struct{}

type xArmed struct{ init *xInit }

type xDragging struct {
	init     *xInit
	side     Side
	progress xProgress
}

func (xIdle) phase() Phase      { return PhaseIdle }
func (*xArmed) phase() Phase    { return PhaseArmed }
func (*xDragging) phase() Phase { return PhaseDragging }

// X is the discrete section-swap engine.
type X struct {
	base
	resolver *alts.Resolver
	state    xState
	// wantHandles records ShowHandles requests made while inert or idle.
	wantHandles bool
}

// NewX creates an idle X engine.
func NewX(host Host, resolver *alts.Resolver, opts Options) *X {
	return &X{base: newBase(scene.AxisX, host, opts), resolver: resolver, state: xIdle{}}
}

// Init resolves the section-type alternatives of the active layout and arms
// the engine. On failure the engine keeps its previous state. With one
// alternative or none the engine is armed but inert.
func (e *X) Init(ctx context.Context) error {
	if d, ok := e.state.(*xDragging); ok {
		return e.precondition("init", d.phase())
	}
	active := e.host.ActiveLayout()
	if active == nil {
		return errors.New(errors.ErrCodeNoActiveLayout, "x stretch: no active layout")
	}
	resolved, err := e.resolver.Resolve(ctx, active)
	if err != nil {
		return err
	}

	e.release()

	sorted := alts.ByWidth(resolved)
	in := &xInit{
		alts:         sorted,
		minWidth:     sorted[0].SectionType.Width,
		maxWidth:     sorted[len(sorted)-1].SectionType.Width,
		initialWidth: active.SectionType().Width,
	}
	for i, a := range sorted {
		if a.Active {
			in.activeIndex = i
			continue
		}
		e.host.Attach(a.Group.Object())
		e.register(a.Group)
	}
	e.state = &xArmed{init: in}

	e.placeHandles(in)
	if in.inert() {
		e.logger.Debug("engine inert", "err", errors.New(errors.ErrCodeNoAlternatives, "section %s has no alternatives", active.SectionType().Code))
		e.handles.setVisible(false)
	} else {
		e.handles.setVisible(e.wantHandles)
	}
	e.logger.Debug("armed", "alternatives", len(sorted), "min", in.minWidth, "max", in.maxWidth)
	return nil
}

func (e *X) placeHandles(in *xInit) {
	g := e.host.ActiveLayout()
	e.handles.attach(e.host)
	y, z := g.Height()/2, g.Depth()/2
	hw := in.initialWidth / 2
	e.handles.at(SideStart).Position = scene.Vec3{X: -hw, Y: y, Z: z}
	e.handles.at(SideEnd).Position = scene.Vec3{X: hw, Y: y, Z: z}
}

// GestureStart begins a drag on side. It prepares the clipped brushes of
// every alternative so that previews never wait for boolean operations.
func (e *X) GestureStart(side Side) error {
	a, ok := e.state.(*xArmed)
	if !ok {
		return e.precondition("gesture start", e.state.phase())
	}
	if !side.valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid side %d", side)
	}
	if a.init.inert() {
		return nil
	}

	members := make([]cut.Member, 0, len(a.init.alts))
	for _, alt := range a.init.alts {
		members = append(members, alt.Group)
	}
	e.prepareCuts(members...)

	e.host.GestureStarted(scene.AxisX)
	e.state = &xDragging{init: a.init, side: side, progress: xProgress{index: a.init.activeIndex}}
	observability.Stretch().OnGestureStart(e.axis.String(), int(side))
	return nil
}

// GestureProgress accumulates delta into the clamped offset and steps the
// alternative index towards the target width, one index at a time.
func (e *X) GestureProgress(delta float64) error {
	d, ok := e.state.(*xDragging)
	if !ok {
		if a, armed := e.state.(*xArmed); armed && a.init.inert() {
			return nil
		}
		return e.precondition("gesture progress", e.state.phase())
	}
	in, p := d.init, &d.progress

	p.offset = clamp(p.offset+float64(d.side)*delta, in.minWidth-in.initialWidth, in.maxWidth-in.initialWidth)
	target := in.initialWidth + p.offset

	swapped := false
	for p.index+1 < len(in.alts) && target >= in.alts[p.index+1].SectionType.Width {
		e.step(in, p, +1)
		swapped = true
	}
	for p.index > 0 && target <= in.alts[p.index-1].SectionType.Width {
		e.step(in, p, -1)
		swapped = true
	}
	if swapped {
		e.host.RequestRedraw()
	}
	return nil
}

// step moves the index by dir, previews the new alternative and moves the
// handles by half the width change each.
func (e *X) step(in *xInit, p *xProgress, dir int) {
	from := in.alts[p.index]
	p.index += dir
	to := in.alts[p.index]

	if to.Active {
		e.host.SetPreview(nil)
	} else {
		e.host.SetPreview(to.Group)
	}
	e.handles.shift(scene.AxisX, (to.SectionType.Width-from.SectionType.Width)/2)

	ev := SwapEvent{
		From:      from.SectionType.Code,
		To:        to.SectionType.Code,
		FromWidth: from.SectionType.Width,
		ToWidth:   to.SectionType.Width,
		Index:     p.index,
	}
	observability.Stretch().OnSwap(e.axis.String(), ev.From, ev.To)
	if e.opts.OnSwap != nil {
		e.opts.OnSwap(ev)
	}
}

// GestureEnd commits the previewed alternative, discards the others and
// resolves a fresh set of alternatives for the next gesture.
func (e *X) GestureEnd(ctx context.Context) error {
	d, ok := e.state.(*xDragging)
	if !ok {
		if a, armed := e.state.(*xArmed); armed && a.init.inert() {
			return nil
		}
		return e.precondition("gesture end", e.state.phase())
	}
	chosen := d.init.alts[d.progress.index]
	committed := !chosen.Active

	e.host.SetPreview(nil)
	if committed {
		if err := e.host.Commit(ctx, chosen.Group); err != nil {
			return err
		}
	}
	e.releaseInit(d.init, chosen.Group)
	e.state = xIdle{}

	e.host.GestureEnded(scene.AxisX)
	observability.Stretch().OnGestureEnd(e.axis.String(), committed)
	e.logger.Debug("gesture end", "section", chosen.SectionType.Code, "committed", committed)

	return e.Init(ctx)
}

// ShowHandles shows the handles unless the engine is inert.
func (e *X) ShowHandles() {
	e.wantHandles = true
	if a, ok := e.state.(*xArmed); ok && !a.init.inert() {
		e.handles.setVisible(true)
	}
}

// HideHandles hides the handles.
func (e *X) HideHandles() {
	e.wantHandles = false
	e.handles.setVisible(false)
}

// Cleanup releases the alternatives and handles and returns to idle.
func (e *X) Cleanup() {
	if _, ok := e.state.(*xDragging); ok {
		e.host.SetPreview(nil)
	}
	e.release()
	e.handles.detach()
	e.state = xIdle{}
}

// release destroys the alternatives of the current init.
func (e *X) release() {
	switch s := e.state.(type) {
	case *xArmed:
		e.releaseInit(s.init, nil)
	case *xDragging:
		e.releaseInit(s.init, nil)
	}
}

// releaseInit destroys every alternative of in except the active layout
// and keep.
func (e *X) releaseInit(in *xInit, keep *layout.Group) {
	for _, a := range in.alts {
		if a.Active || a.Group == keep {
			continue
		}
		e.forget(a.Group)
		a.Group.Destroy()
	}
}

// Status implements [Engine].
func (e *X) Status() Status {
	st := Status{Axis: e.axis.String(), Phase: e.state.phase().String(), Handles: e.handles.visible()}
	var in *xInit
	switch s := e.state.(type) {
	case xIdle:
		st.Inert = true
		return st
	case *xArmed:
		in = s.init
		st.Index = in.activeIndex
	case *xDragging:
		in = s.init
		st.Side = s.side.String()
		st.Offset = s.progress.offset
		st.Index = s.progress.index
		if alt := in.alts[s.progress.index]; !alt.Active {
			st.Preview = alt.SectionType.Code
		}
	}
	st.Inert = in.inert()
	for _, a := range in.alts {
		st.Alternatives = append(st.Alternatives, a.SectionType.Code)
	}
	return st
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

var _ Engine = (*X)(nil)
