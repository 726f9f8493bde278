// Package house implements the house aggregate: one active layout, an
// optional preview during an X stretch, both stretch engines and the cut
// manager.
//
// A [House] is the [stretch.Host] of its engines. It keeps the active and
// the preview layout mutually exclusive on screen, commits X stretch
// results atomically, hides the idle axis's handles while the other axis
// drags and asks the renderer to redraw when something changed.
//
// Houses are not safe for concurrent use.
package house

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/modhouse/pkg/alts"
	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/geometry"
	mhio "github.com/matzehuels/modhouse/pkg/io"
	"github.com/matzehuels/modhouse/pkg/layout"
	"github.com/matzehuels/modhouse/pkg/scene"
	"github.com/matzehuels/modhouse/pkg/stretch"
)

// Config holds the collaborators and engine options of a house.
type Config struct {
	Catalog  catalog.Catalog
	Provider geometry.Provider
	// Renderer receives redraw requests. Nil uses [scene.NopRenderer].
	Renderer scene.Renderer
	// Cuts is the cut manager. Nil disables clipping.
	Cuts *cut.Manager

	Strict   bool
	MaxDepth float64
	OnSwap   func(stretch.SwapEvent)
	Logger   *log.Logger
}

// House is the configurator aggregate for one house type.
type House struct {
	id        string
	name      string
	root      *scene.Object
	active    *layout.Group
	preview   *layout.Group
	cuts      *cut.Manager
	renderer  scene.Renderer
	asm       *layout.Assembler
	x         *stretch.X
	z         *stretch.Z
	handlesOn bool
	logger    *log.Logger
}

// New builds the active layout of a house type and arms both engines.
func New(ctx context.Context, cfg Config, ht mhio.HouseType) (*House, error) {
	if cfg.Catalog == nil || cfg.Provider == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "house needs a catalog and a geometry provider")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = scene.NopRenderer{}
	}

	asm := layout.NewAssembler(cfg.Provider, layout.WithCatalog(cfg.Catalog), layout.WithLogger(logger))
	m, err := layout.BuildMatrix(ctx, cfg.Catalog, ht.SystemID, ht.DNAs)
	if err != nil {
		return nil, err
	}
	active, err := asm.Assemble(ctx, m)
	if err != nil {
		return nil, err
	}

	h := &House{
		id:       uuid.NewString(),
		name:     ht.Name,
		root:     scene.New(scene.KindGroup, "house"),
		active:   active,
		cuts:     cfg.Cuts,
		renderer: renderer,
		asm:      asm,
	}
	h.logger = logger.With("house", h.id[:8])
	h.root.Add(active.Object())
	if h.cuts != nil {
		h.cuts.Register(active)
	}

	opts := stretch.Options{
		Strict:        cfg.Strict,
		MaxDepth:      cfg.MaxDepth,
		VanillaSource: asm,
		OnSwap:        cfg.OnSwap,
		Logger:        h.logger,
	}
	h.x = stretch.NewX(h, alts.NewResolver(cfg.Catalog, asm, alts.WithLogger(h.logger)), opts)
	h.z = stretch.NewZ(h, opts)

	if err := h.x.Init(ctx); err != nil {
		h.Close()
		return nil, err
	}
	if err := h.z.Init(ctx); err != nil {
		h.Close()
		return nil, err
	}
	h.logger.Debug("house ready", "section", active.SectionType().Code, "columns", len(active.Columns()))
	return h, nil
}

// ID returns the house identity.
func (h *House) ID() string { return h.id }

// Name returns the house type name.
func (h *House) Name() string { return h.name }

// Root returns the house scene root.
func (h *House) Root() *scene.Object { return h.root }

// X returns the width engine.
func (h *House) X() *stretch.X { return h.x }

// Z returns the length engine.
func (h *House) Z() *stretch.Z { return h.z }

// Engine returns the engine for axis.
func (h *House) Engine(axis scene.Axis) (stretch.Engine, error) {
	switch axis {
	case scene.AxisX:
		return h.x, nil
	case scene.AxisZ:
		return h.z, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "no stretch engine for axis %s", axis)
	}
}

// Preview returns the previewed layout, or nil.
func (h *House) Preview() *layout.Group { return h.preview }

// ShowHandles shows the handles of both engines.
func (h *House) ShowHandles() {
	h.handlesOn = true
	h.x.ShowHandles()
	h.z.ShowHandles()
	h.RequestRedraw()
}

// HideHandles hides the handles of both engines.
func (h *House) HideHandles() {
	h.handlesOn = false
	h.x.HideHandles()
	h.z.HideHandles()
	h.RequestRedraw()
}

// SetClip replaces the clip planes and re-clips the active layout.
func (h *House) SetClip(s cut.Settings) error {
	if h.cuts == nil {
		return errors.New(errors.ErrCodeCutConfig, "house has no cut manager")
	}
	h.cuts.SetSettings(s)
	shown := h.active
	if h.preview != nil {
		shown = h.preview
	}
	err := cut.Prepare(h.cuts, shown)
	h.RequestRedraw()
	return err
}

// Close releases every scene object the house owns.
func (h *House) Close() {
	h.x.Cleanup()
	h.z.Cleanup()
	if h.cuts != nil {
		h.cuts.DestroyClippedBrushes()
		h.cuts.Forget(h.active)
	}
	h.active.Destroy()
	h.preview = nil
}

// ActiveLayout implements [stretch.Host].
func (h *House) ActiveLayout() *layout.Group {
	if h.active == nil || h.active.Destroyed() {
		return nil
	}
	return h.active
}

// SetPreview implements [stretch.Host]. At most one of the active and the
// preview layout is visible.
func (h *House) SetPreview(g *layout.Group) {
	if h.preview != nil && h.preview != g {
		h.preview.Object().SetVisible(false)
	}
	h.preview = g
	if g == nil {
		h.active.Object().SetVisible(true)
		h.showBrushes(h.active)
		return
	}
	h.active.Object().SetVisible(false)
	g.Object().SetVisible(true)
	h.showBrushes(g)
}

func (h *House) showBrushes(g *layout.Group) {
	if h.cuts != nil {
		h.cuts.ShowAppropriateBrushes(g)
	}
}

// Commit implements [stretch.Host]. The swap is a single assignment; the
// previous layout is destroyed afterwards and the Z engine re-armed on the
// new layout.
func (h *House) Commit(ctx context.Context, g *layout.Group) error {
	if g == nil || g.Destroyed() {
		return errors.New(errors.ErrCodeNoActiveLayout, "cannot commit a missing layout")
	}
	old := h.active
	h.active, h.preview = g, nil

	h.root.Add(g.Object())
	g.Object().SetVisible(true)
	if h.cuts != nil {
		h.cuts.Forget(old)
		h.cuts.Register(g)
	}
	old.Destroy()
	h.showBrushes(g)

	h.z.Cleanup()
	if err := h.z.Init(ctx); err != nil {
		h.logger.Warn("z stretch not re-armed after commit", "err", err)
	} else if h.handlesOn {
		h.z.ShowHandles()
	}
	h.logger.Info("committed layout", "section", g.SectionType().Code, "width", g.Width())
	h.RequestRedraw()
	return nil
}

// Attach implements [stretch.Host].
func (h *House) Attach(obj *scene.Object) { h.root.Add(obj) }

// GestureStarted implements [stretch.Host].
func (h *House) GestureStarted(axis scene.Axis) {
	if other := h.other(axis); other != nil {
		other.HideHandles()
	}
}

// GestureEnded implements [stretch.Host].
func (h *House) GestureEnded(axis scene.Axis) {
	if other := h.other(axis); other != nil && h.handlesOn {
		other.ShowHandles()
	}
}

func (h *House) other(axis scene.Axis) stretch.Engine {
	switch axis {
	case scene.AxisX:
		return h.z
	case scene.AxisZ:
		return h.x
	}
	return nil
}

// CutManager implements [stretch.Host].
func (h *House) CutManager() *cut.Manager { return h.cuts }

// RequestRedraw implements [stretch.Host].
func (h *House) RequestRedraw() { h.renderer.RequestRedraw() }

// Snapshot returns a read-only view of the house.
func (h *House) Snapshot() *mhio.Snapshot {
	g := h.active
	s := &mhio.Snapshot{
		HouseID:     h.id,
		SystemID:    g.SystemID(),
		SectionType: g.SectionType(),
		DNAs:        g.DNAs(),
		Width:       g.Width(),
		Height:      g.Height(),
		Depth:       g.Depth(),
		Levels:      len(g.Matrix().Levels),
		Stretch:     []stretch.Status{h.x.Status(), h.z.Status()},
	}
	for _, c := range g.Columns() {
		s.Columns = append(s.Columns, mhio.ColumnSnapshot{
			Role:     string(c.Spec.Role),
			GridType: c.Spec.GridType,
			Offset:   c.Object().Position.Z,
			Depth:    c.Depth(),
		})
	}
	if h.preview != nil {
		s.Preview = h.preview.SectionType().Code
	}
	if h.cuts != nil {
		s.Clip = h.cuts.Settings().Strings()
		s.Cut = h.cuts.Stats()
	}
	return s
}

var _ stretch.Host = (*House)(nil)
