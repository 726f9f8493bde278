package layout

import (
	"context"
	stderrors "errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/modhouse/pkg/catalog/catalogtest"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/geometry"
	"github.com/matzehuels/modhouse/pkg/scene"
)

func buildGroup(t *testing.T, width int) *Group {
	t.Helper()
	cat := catalogtest.Index()
	m, err := BuildMatrix(context.Background(), cat, catalogtest.SystemID, catalogtest.TwoStorey(width))
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	g, err := NewAssembler(geometry.Synthetic{}, WithCatalog(cat)).Assemble(context.Background(), m)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return g
}

func TestAssemble(t *testing.T) {
	g := buildGroup(t, 4)

	if n := len(g.Columns()); n != 4 {
		t.Fatalf("columns = %d, want 4", n)
	}
	if st := g.SectionType(); st.Code != "W4" || st.Width != 4 {
		t.Errorf("SectionType = %+v", st)
	}
	if !approx(g.Width(), 4) || !approx(g.Depth(), 7.2) || !approx(g.Height(), 5.4) {
		t.Errorf("dimensions = %v x %v x %v", g.Width(), g.Depth(), g.Height())
	}
	if g.Object().Kind != scene.KindLayoutGroup {
		t.Errorf("kind = %v", g.Object().Kind)
	}

	// 10 modules, 3 elements each plus a roof on the 5 top modules.
	elems := g.Elements()
	if len(elems) != 35 {
		t.Fatalf("elements = %d, want 35", len(elems))
	}
	for _, e := range elems {
		if e.Tags.Type != scene.TypeElement {
			t.Errorf("element %s has type %q", e.Name, e.Tags.Type)
		}
		want := map[string]string{"floor": "Structure", "wall-left": "Cladding", "wall-right": "Cladding", "roof": "Roofing"}[e.Name]
		if e.Tags.Category != want {
			t.Errorf("element %s category = %q, want %q", e.Name, e.Tags.Category, want)
		}
	}

	start, mids, end, ok := g.Bookends()
	if !ok || start != g.Columns()[0] || end != g.Columns()[3] || len(mids) != 2 {
		t.Error("Bookends partition wrong")
	}
	if got := strings.Join(g.DNAs(), ","); got != strings.Join(catalogtest.TwoStorey(4), ",") {
		t.Errorf("DNAs = %s", got)
	}
}

func TestAssembleUncategorized(t *testing.T) {
	cat := catalogtest.Index()
	m, err := BuildMatrix(context.Background(), cat, catalogtest.SystemID, catalogtest.Bungalow(3))
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewAssembler(geometry.Synthetic{}).Assemble(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range g.Elements() {
		if e.Tags.Category != Uncategorized {
			t.Errorf("without a catalog, %s should be uncategorized, got %q", e.Name, e.Tags.Category)
		}
	}
	if st := g.SectionType(); st.Code != "W3" || st.Width != 3 {
		t.Errorf("fallback section type = %+v", st)
	}
}

func TestAssembleAllOrNothing(t *testing.T) {
	cat := catalogtest.Index()
	m, err := BuildMatrix(context.Background(), cat, catalogtest.SystemID, catalogtest.TwoStorey(4))
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	failing := geometry.Func(func(ctx context.Context, ref geometry.Ref) (*geometry.Data, error) {
		calls.Add(1)
		if ref.DNA == catalogtest.DNA(4, "MID", "T", "C", 2) {
			return nil, stderrors.New("service unavailable")
		}
		return geometry.Synthetic{}.FetchModuleGeometry(ctx, ref)
	})

	g, err := NewAssembler(failing, WithCatalog(cat)).Assemble(context.Background(), m)
	if g != nil {
		t.Error("no partial group should escape")
	}
	if !errors.Is(err, errors.ErrCodeLayoutAssembly) || !errors.Is(err, errors.ErrCodeGeometryFetch) {
		t.Errorf("got %v, want LAYOUT_ASSEMBLY_ERROR wrapping GEOMETRY_FETCH_ERROR", err)
	}
	if calls.Load() == 0 {
		t.Error("provider never called")
	}
}

func TestAssembleVanillaColumn(t *testing.T) {
	cat := catalogtest.Index()
	g := buildGroup(t, 5)
	asm := NewAssembler(geometry.Synthetic{}, WithCatalog(cat))

	col, err := asm.AssembleVanillaColumn(context.Background(), catalogtest.SystemID, "W5", g.Matrix().Levels)
	if err != nil {
		t.Fatalf("AssembleVanillaColumn: %v", err)
	}
	if !approx(col.Depth(), catalogtest.GridLength) {
		t.Errorf("vanilla depth = %v", col.Depth())
	}
	if len(col.Modules()) != 2 {
		t.Errorf("vanilla modules = %d, want one per level", len(col.Modules()))
	}
	if got := col.DNAs(); got[0] != catalogtest.DNA(5, "MID", "F", "V", 1) || got[1] != catalogtest.DNA(5, "MID", "T", "V", 1) {
		t.Errorf("vanilla DNAs = %v", got)
	}

	if _, err := NewAssembler(geometry.Synthetic{}).AssembleVanillaColumn(context.Background(), catalogtest.SystemID, "W5", g.Matrix().Levels); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("without catalog: got %v", err)
	}
}

func TestGroupDestroy(t *testing.T) {
	g := buildGroup(t, 3)
	root := scene.New(scene.KindGroup, "house")
	root.Add(g.Object())

	g.Destroy()
	g.Destroy()
	if !g.Destroyed() || len(root.Children()) != 0 {
		t.Error("group should be detached after Destroy")
	}
	if len(g.Elements()) != 0 {
		t.Error("destroyed group should own no elements")
	}
}
