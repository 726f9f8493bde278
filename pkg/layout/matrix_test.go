package layout

import (
	"context"
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/modhouse/pkg/catalog/catalogtest"
	"github.com/matzehuels/modhouse/pkg/errors"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildMatrix(t *testing.T) {
	cat := catalogtest.Index()
	dnas := catalogtest.TwoStorey(4)

	m, err := BuildMatrix(context.Background(), cat, catalogtest.SystemID, dnas)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}

	if got := shapeOfSpecs(m.Columns); !slices.Equal(got, []string{"start:A", "mid:B", "mid:C", "end:A"}) {
		t.Errorf("columns = %v", got)
	}
	if len(m.Levels) != 2 || m.Levels[0].Type != "F" || m.Levels[1].Type != "T" {
		t.Fatalf("levels = %+v", m.Levels)
	}
	if !m.IsRectangular() {
		t.Error("matrix should be rectangular")
	}
	if m.SectionType != "W4" || m.Width != 4 {
		t.Errorf("section = %s width = %v", m.SectionType, m.Width)
	}
	if !approx(m.Height, catalogtest.GroundHeight+catalogtest.TopHeight) {
		t.Errorf("Height = %v", m.Height)
	}
	if !approx(m.Levels[1].Elevation, catalogtest.GroundHeight) {
		t.Errorf("top level elevation = %v", m.Levels[1].Elevation)
	}

	wantDepths := []float64{1.2, 2.4, 2.4, 1.2}
	wantOffsets := []float64{0, 1.2, 3.6, 6.0}
	for i, col := range m.Columns {
		if !approx(col.Depth, wantDepths[i]) || !approx(col.Offset, wantOffsets[i]) {
			t.Errorf("column %d depth/offset = %v/%v, want %v/%v", i, col.Depth, col.Offset, wantDepths[i], wantOffsets[i])
		}
	}
	if !approx(m.Depth, 7.2) {
		t.Errorf("Depth = %v", m.Depth)
	}

	b := m.Columns[1].Rows[0]
	if len(b.Modules) != 2 || !approx(b.Modules[1].Offset, catalogtest.GridLength) {
		t.Errorf("B run = %+v", b)
	}
}

func TestBuildMatrixPreservesOrder(t *testing.T) {
	cat := catalogtest.Index()
	inputs := map[string][]string{
		"two-storey": catalogtest.TwoStorey(5),
		"bungalow":   catalogtest.Bungalow(3),
		"single-mid": {
			catalogtest.DNA(6, "END", "F", "A", 1),
			catalogtest.DNA(6, "MID", "F", "C", 2),
			catalogtest.DNA(6, "END", "F", "A", 1),
		},
	}

	for name, dnas := range inputs {
		t.Run(name, func(t *testing.T) {
			m, err := BuildMatrix(context.Background(), cat, catalogtest.SystemID, dnas)
			if err != nil {
				t.Fatalf("BuildMatrix: %v", err)
			}
			if !m.IsRectangular() {
				t.Error("not rectangular")
			}
			if diff := cmp.Diff(dnas, m.DNAs()); diff != "" {
				t.Errorf("DNAs mismatch (-want +got):\n%s", diff)
			}

			seen := map[int]bool{}
			for _, col := range m.Columns {
				for _, row := range col.Rows {
					for _, pm := range row.Modules {
						if seen[pm.Index] {
							t.Errorf("index %d appears twice", pm.Index)
						}
						seen[pm.Index] = true
					}
				}
			}
			if len(seen) != len(dnas) {
				t.Errorf("matrix holds %d modules, want %d", len(seen), len(dnas))
			}
		})
	}
}

func TestBuildMatrixIdempotent(t *testing.T) {
	cat := catalogtest.Index()
	dnas := catalogtest.TwoStorey(3)

	first, err := BuildMatrix(context.Background(), cat, catalogtest.SystemID, dnas)
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := BuildMatrix(context.Background(), cat, catalogtest.SystemID, dnas)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("matrix differs between runs:\n%s", diff)
		}
		a, _ := json.Marshal(first)
		b, _ := json.Marshal(again)
		if string(a) != string(b) {
			t.Fatal("encoded matrices differ")
		}
	}
}

func TestBuildMatrixErrors(t *testing.T) {
	end := catalogtest.DNA(4, "END", "F", "A", 1)
	mid := catalogtest.DNA(4, "MID", "F", "B", 1)
	topEnd := catalogtest.DNA(4, "END", "T", "A", 1)

	tests := []struct {
		name   string
		system string
		dnas   []string
		code   errors.Code
	}{
		{"empty", catalogtest.SystemID, nil, errors.ErrCodeInvalidInput},
		{"bad system", "", []string{end, end}, errors.ErrCodeInvalidInput},
		{"bad dna", catalogtest.SystemID, []string{end, "not a dna"}, errors.ErrCodeInvalidDNA},
		{"unknown dna", catalogtest.SystemID, []string{end, "W4-END-F-Z9"}, errors.ErrCodeCatalog},
		{"unknown system", "nope", []string{end, end}, errors.ErrCodeCatalog},
		{"dangling row", catalogtest.SystemID, []string{end, mid}, errors.ErrCodeLayoutAssembly},
		{"mid outside row", catalogtest.SystemID, []string{mid, end, end}, errors.ErrCodeLayoutAssembly},
		{"non-rectangular", catalogtest.SystemID, []string{end, mid, end, topEnd, topEnd}, errors.ErrCodeLayoutAssembly},
		{"mixed sections", catalogtest.SystemID, []string{end, catalogtest.DNA(5, "END", "F", "A", 1)}, errors.ErrCodeLayoutAssembly},
	}

	cat := catalogtest.Index()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildMatrix(context.Background(), cat, tt.system, tt.dnas)
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}
