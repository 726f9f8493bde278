package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/house"
	"github.com/matzehuels/modhouse/pkg/scene"
	"github.com/matzehuels/modhouse/pkg/stretch"
)

// Gesture is one scripted drag: start on a side, report the deltas in
// order, then release.
type Gesture struct {
	Axis   scene.Axis
	Side   stretch.Side
	Deltas []float64
}

// String formats g the way [ParseGesture] reads it, e.g. "x:end:1.5,0.5".
func (g Gesture) String() string {
	deltas := make([]string, len(g.Deltas))
	for i, d := range g.Deltas {
		deltas[i] = strconv.FormatFloat(d, 'f', -1, 64)
	}
	return g.Axis.String() + ":" + g.Side.String() + ":" + strings.Join(deltas, ",")
}

// ParseGesture parses "axis:side:delta[,delta...]". Deltas are incremental
// pointer movements along the axis in metres, reported in order.
func ParseGesture(s string) (Gesture, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return Gesture{}, errors.New(errors.ErrCodeInvalidInput, "invalid gesture %q (want axis:side:deltas)", s)
	}
	axis, err := stretch.ParseAxis(parts[0])
	if err != nil {
		return Gesture{}, err
	}
	side, err := stretch.ParseSide(parts[1])
	if err != nil {
		return Gesture{}, err
	}
	g := Gesture{Axis: axis, Side: side}
	for _, f := range strings.Split(parts[2], ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		d, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Gesture{}, errors.New(errors.ErrCodeInvalidInput, "invalid delta %q in gesture %q", f, s)
		}
		g.Deltas = append(g.Deltas, d)
	}
	if len(g.Deltas) == 0 {
		return Gesture{}, errors.New(errors.ErrCodeInvalidInput, "gesture %q has no deltas", s)
	}
	return g, nil
}

// ParseGestures parses a gesture plan.
func ParseGestures(specs []string) ([]Gesture, error) {
	out := make([]Gesture, 0, len(specs))
	for _, s := range specs {
		g, err := ParseGesture(s)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Apply replays g against h.
func (g Gesture) Apply(ctx context.Context, h *house.House) error {
	e, err := h.Engine(g.Axis)
	if err != nil {
		return err
	}
	if err := e.GestureStart(g.Side); err != nil {
		return fmt.Errorf("%s: start: %w", g, err)
	}
	for _, d := range g.Deltas {
		if err := e.GestureProgress(d); err != nil {
			return fmt.Errorf("%s: progress: %w", g, err)
		}
	}
	if err := e.GestureEnd(ctx); err != nil {
		return fmt.Errorf("%s: end: %w", g, err)
	}
	return nil
}
