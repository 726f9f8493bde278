package geometry

import (
	"context"
	"strings"

	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// Panel thicknesses of synthetic geometry, in metres.
const (
	slabThickness = 0.25
	wallThickness = 0.2
)

// roofLevels are the level types that get a roof element.
var roofLevels = map[string]bool{"T": true, "R": true}

// Synthetic derives box geometry from module dimensions: a floor slab, two
// side walls and, on top levels, a roof slab. Modules span x in
// [-w/2, w/2], y in [0, h] and z in [0, l]. It stands in for a remote
// geometry service in the CLI and in tests.
type Synthetic struct{}

// FetchModuleGeometry implements [Provider].
func (Synthetic) FetchModuleGeometry(ctx context.Context, ref Ref) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := ref.Dimensions
	if d.Width <= 0 || d.Height <= 0 || d.Length <= 0 {
		return nil, errors.New(errors.ErrCodeGeometryFetch, "module %s has degenerate dimensions %+v", ref.DNA, d)
	}
	hw := d.Width / 2

	elements := []Element{
		{Name: "floor", Bounds: box(-hw, 0, 0, hw, slabThickness, d.Length)},
		{Name: "wall-left", Bounds: box(-hw, 0, 0, -hw+wallThickness, d.Height, d.Length)},
		{Name: "wall-right", Bounds: box(hw-wallThickness, 0, 0, hw, d.Height, d.Length)},
	}
	if roofLevels[strings.ToUpper(ref.LevelType)] {
		elements = append(elements, Element{
			Name:   "roof",
			Bounds: box(-hw, d.Height-slabThickness, 0, hw, d.Height, d.Length),
		})
	}
	return &Data{Ref: ref, Elements: elements}, nil
}

func box(x0, y0, z0, x1, y1, z1 float64) scene.Box3 {
	return scene.Box3{Min: scene.Vec3{X: x0, Y: y0, Z: z0}, Max: scene.Vec3{X: x1, Y: y1, Z: z1}}
}

var _ Provider = Synthetic{}
