// Package stretch implements the interactive stretch engines.
//
// Both engines turn pointer drags into layout changes and share one
// gesture interface ([Engine]):
//
//   - The X engine ([NewX]) stretches a house across its width. Widths are
//     discrete: the engine resolves every section-type alternative up
//     front and, while the pointer moves, steps through them one index at
//     a time, previewing the alternative closest to the drag. Ending the
//     gesture commits the preview.
//   - The Z engine ([NewZ]) stretches a house along its length. Lengths are
//     continuous: the selected bookend column simply follows the pointer
//     and pre-built filler ("vanilla") columns fill the gap behind it.
//
// Each engine is an explicit state machine. Idle engines must be armed with
// Init before a gesture; GestureStart moves to dragging and GestureEnd back
// to armed. Calls in the wrong phase are precondition violations: strict
// engines return PRECONDITION_FAILED, lenient engines log and ignore them.
//
// GestureProgress runs inside pointer-move handling. It never blocks,
// never allocates goroutines and never calls the catalog or the geometry
// provider. Engines are not safe for concurrent use; callers serialize the
// gestures of one house.
package stretch

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/layout"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// Side selects which end of the layout a gesture drags.
type Side int

// Sides. For the X engine Start is the -x edge, for the Z engine the start
// bookend.
const (
	SideStart Side = -1
	SideEnd   Side = 1
)

func (s Side) String() string {
	switch s {
	case SideStart:
		return "start"
	case SideEnd:
		return "end"
	default:
		return "invalid"
	}
}

// ParseSide parses "start", "end", "-1" or "+1".
func ParseSide(s string) (Side, error) {
	switch s {
	case "start", "-1", "-":
		return SideStart, nil
	case "end", "1", "+1", "+":
		return SideEnd, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "invalid side %q (want start or end)", s)
}

// ParseAxis parses a stretchable axis, "x" or "z".
func ParseAxis(s string) (scene.Axis, error) {
	switch s {
	case "x", "X":
		return scene.AxisX, nil
	case "z", "Z":
		return scene.AxisZ, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "invalid axis %q (want x or z)", s)
}

func (s Side) valid() bool { return s == SideStart || s == SideEnd }

// index maps a side to a handle slot.
func (s Side) index() int {
	if s == SideStart {
		return 0
	}
	return 1
}

// Phase is the engine state.
type Phase int

// Engine phases.
const (
	PhaseIdle Phase = iota
	PhaseArmed
	PhaseDragging
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseArmed:
		return "armed"
	case PhaseDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Engine is the gesture interface shared by both axes.
type Engine interface {
	// Axis returns the stretch axis.
	Axis() scene.Axis
	// Status describes the engine state.
	Status() Status

	Init(ctx context.Context) error
	GestureStart(side Side) error
	GestureProgress(delta float64) error
	GestureEnd(ctx context.Context) error

	ShowHandles()
	HideHandles()
	// Cleanup releases every object the engine created and returns it to
	// idle. Callers must clean up before discarding an engine.
	Cleanup()
}

// Status is a read-only view of an engine.
type Status struct {
	Axis  string `json:"axis"`
	Phase string `json:"phase"`
	// Inert engines have nothing to stretch.
	Inert   bool    `json:"inert"`
	Side    string  `json:"side,omitempty"`
	Offset  float64 `json:"offset"`
	Handles bool    `json:"handles"`

	// X engine.
	Alternatives []string `json:"alternatives,omitempty"`
	Index        int      `json:"index"`
	Preview      string   `json:"preview,omitempty"`

	// Z engine.
	Vanilla int `json:"vanilla"`
}

// Host is the house an engine stretches.
type Host interface {
	// ActiveLayout returns the active layout, or nil.
	ActiveLayout() *layout.Group
	// SetPreview shows g as the uncommitted preview; nil restores the
	// active layout.
	SetPreview(g *layout.Group)
	// Commit makes g the active layout and destroys the previous one.
	Commit(ctx context.Context, g *layout.Group) error
	// Attach adds a detached object to the house scene.
	Attach(obj *scene.Object)
	// GestureStarted and GestureEnded bracket a drag on one axis so the
	// host can hide the other axis's handles.
	GestureStarted(axis scene.Axis)
	GestureEnded(axis scene.Axis)
	// CutManager returns the cut manager, or nil when none is configured.
	CutManager() *cut.Manager
	RequestRedraw()
}

// SwapEvent reports one X engine index step.
type SwapEvent struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	FromWidth float64 `json:"from_width"`
	ToWidth   float64 `json:"to_width"`
	Index     int     `json:"index"`
}

// VanillaSource builds filler columns for the Z engine.
// [*layout.Assembler] implements it.
type VanillaSource interface {
	VanillaDepth(ctx context.Context, systemID, sectionType string, levels []layout.Level) (float64, error)
	AssembleVanillaColumn(ctx context.Context, systemID, sectionType string, levels []layout.Level) (*layout.Column, error)
}

// Options configure an engine.
type Options struct {
	// Strict turns precondition violations into errors.
	Strict bool
	// MaxDepth bounds vanilla column pre-materialization. Zero disables it.
	MaxDepth float64
	// VanillaSource builds vanilla columns for the Z engine.
	VanillaSource VanillaSource
	// OnSwap is called synchronously for every X engine index step.
	OnSwap func(SwapEvent)
	Logger *log.Logger
}

// base holds what both engines share.
type base struct {
	axis    scene.Axis
	host    Host
	opts    Options
	logger  *log.Logger
	handles *handles
}

func newBase(axis scene.Axis, host Host, opts Options) base {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return base{
		axis:    axis,
		host:    host,
		opts:    opts,
		logger:  logger.With("axis", axis.String()),
		handles: newHandles(axis),
	}
}

// Axis implements [Engine].
func (b *base) Axis() scene.Axis { return b.axis }

func (b *base) precondition(op string, phase Phase) error {
	err := errors.New(errors.ErrCodePrecondition, "%s stretch: %s called while %s", b.axis, op, phase)
	if b.opts.Strict {
		return err
	}
	b.logger.Warn("ignoring gesture", "op", op, "phase", phase)
	return nil
}

// prepareCuts memoizes and shows brushes for members. A missing cut
// manager only fails this pass.
func (b *base) prepareCuts(members ...cut.Member) {
	if len(members) == 0 {
		return
	}
	if err := cut.Prepare(b.host.CutManager(), members...); err != nil {
		b.logger.Warn("cut pass skipped", "err", err)
	}
}

func (b *base) register(members ...cut.Member) {
	if m := b.host.CutManager(); m != nil {
		for _, mem := range members {
			m.Register(mem)
		}
	}
}

func (b *base) forget(members ...cut.Member) {
	if m := b.host.CutManager(); m != nil {
		for _, mem := range members {
			m.Forget(mem)
		}
	}
}
