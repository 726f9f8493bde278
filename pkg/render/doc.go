// Package render provides diagram rendering for layout matrices.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert a rendered SVG with the external
// rsvg-convert tool from librsvg. [Available] reports whether it is
// installed; without it PNG and PDF exports fail with UNSUPPORTED.
//
//	svg, err := matrixdot.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2)
//
// # Matrix Diagrams
//
// The [matrixdot] subpackage renders a [layout.Matrix] as a Graphviz
// diagram: one box per column and level, columns left to right, levels
// bottom to top.
//
// [matrixdot]: github.com/matzehuels/modhouse/pkg/render/matrixdot
// [layout.Matrix]: github.com/matzehuels/modhouse/pkg/layout.Matrix
package render
