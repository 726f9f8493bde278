package cut

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// Plane is an axis-aligned clip plane. By default geometry on the low side
// (coordinate <= Offset) is kept; Invert keeps the high side instead.
type Plane struct {
	Axis   scene.Axis `json:"axis"`
	Offset float64    `json:"offset"`
	Invert bool       `json:"invert,omitempty"`
}

// String formats the plane as accepted by [ParsePlane].
func (p Plane) String() string {
	s := p.Axis.String() + "=" + strconv.FormatFloat(p.Offset, 'f', -1, 64)
	if p.Invert {
		return "-" + s
	}
	return s
}

// Clip intersects b with the plane's keep-halfspace.
func (p Plane) Clip(b scene.Box3) scene.Box3 {
	if p.Invert {
		b.Min = b.Min.With(p.Axis, max(b.Min.Get(p.Axis), p.Offset))
	} else {
		b.Max = b.Max.With(p.Axis, min(b.Max.Get(p.Axis), p.Offset))
	}
	return b
}

// ParsePlane parses "x=1.5", "y=2" or "z=3". A leading "-" inverts the
// plane.
func ParsePlane(s string) (Plane, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	var p Plane
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		p.Invert = true
		s = rest
	}
	axis, offset, ok := strings.Cut(s, "=")
	if !ok {
		return Plane{}, errors.New(errors.ErrCodeInvalidInput, "clip plane %q: want axis=offset", s)
	}
	switch axis {
	case "x":
		p.Axis = scene.AxisX
	case "y":
		p.Axis = scene.AxisY
	case "z":
		p.Axis = scene.AxisZ
	default:
		return Plane{}, errors.New(errors.ErrCodeInvalidInput, "clip plane %q: unknown axis %q", s, axis)
	}
	f, err := strconv.ParseFloat(offset, 64)
	if err != nil {
		return Plane{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "clip plane %q: bad offset", s)
	}
	p.Offset = f
	return p, nil
}

// Settings are the active clip planes. No planes means clipping is off.
type Settings struct {
	Planes []Plane `json:"planes,omitempty"`
}

// Active reports whether any clip plane is set.
func (s Settings) Active() bool { return len(s.Planes) > 0 }

// Strings formats the planes with [Plane.String].
func (s Settings) Strings() []string {
	out := make([]string, len(s.Planes))
	for i, p := range s.Planes {
		out[i] = p.String()
	}
	return out
}

// ParseSettings parses a list of plane specs. "none" or an empty list
// disables clipping.
func ParseSettings(specs []string) (Settings, error) {
	var s Settings
	for _, spec := range specs {
		if strings.EqualFold(strings.TrimSpace(spec), "none") || strings.TrimSpace(spec) == "" {
			continue
		}
		p, err := ParsePlane(spec)
		if err != nil {
			return Settings{}, err
		}
		s.Planes = append(s.Planes, p)
	}
	return s, nil
}

func (s Settings) String() string {
	if !s.Active() {
		return "none"
	}
	return fmt.Sprint(s.Strings())
}
