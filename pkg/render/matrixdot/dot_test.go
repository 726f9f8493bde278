package matrixdot

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/modhouse/pkg/catalog/catalogtest"
	"github.com/matzehuels/modhouse/pkg/layout"
)

func matrix(t *testing.T) *layout.Matrix {
	t.Helper()
	m, err := layout.BuildMatrix(context.Background(), catalogtest.Index(), catalogtest.SystemID, catalogtest.TwoStorey(4))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestToDOT(t *testing.T) {
	m := matrix(t)
	dot := ToDOT(m, Options{})

	for _, want := range []string{
		"digraph M {",
		"subgraph cluster_0",
		"subgraph cluster_3",
		`label="start A"`,
		`label="mid B"`,
		"{ rank=same; c0_l0; c1_l0; c2_l0; c3_l0; }",
		`label="W4-MID-F-B1\nW4-MID-F-B1"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
	if strings.Contains(dot, "level F") {
		t.Error("compact labels should not include levels")
	}

	detailed := ToDOT(m, Options{Detailed: true})
	for _, want := range []string{"level T", "(4x2.8x1.2)", `depth 2.4`} {
		if !strings.Contains(detailed, want) {
			t.Errorf("detailed DOT missing %q", want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.50 200.00" width="100" height="200"`) {
		t.Errorf("normalized = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Error("svg without viewBox should pass through")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(matrix(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "W4-END-F-A1") {
		t.Errorf("svg does not show the matrix:\n%.300s", svg)
	}

	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected a parse error for broken DOT")
	}
}
