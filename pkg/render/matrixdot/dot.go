// Package matrixdot renders layout matrices as Graphviz diagrams.
//
// Every matrix cell (one column at one level) becomes a box listing its
// module DNAs. Columns run left to right and are drawn as clusters labelled
// with their role and grid type; levels are stacked with the ground level
// at the bottom.
//
//	dot := matrixdot.ToDOT(m, matrixdot.Options{Detailed: true})
//	svg, err := matrixdot.RenderSVG(dot)
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package matrixdot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/modhouse/pkg/layout"
	"github.com/matzehuels/modhouse/pkg/render"
)

// Options configures matrix diagrams.
type Options struct {
	// Detailed adds module dimensions and column depths to the labels.
	Detailed bool
}

var roleColors = map[layout.Role]string{
	layout.RoleStart: "lightsteelblue",
	layout.RoleMid:   "white",
	layout.RoleEnd:   "lightsteelblue",
}

// ToDOT converts a matrix to Graphviz DOT source.
func ToDOT(m *layout.Matrix, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph M {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  newrank=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", fmt.Sprintf("%s / %s", m.SystemID, m.SectionType))
	buf.WriteString("\n")

	for ci, col := range m.Columns {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", ci)
		label := fmt.Sprintf("%s %s", col.Role, col.GridType)
		if opts.Detailed {
			label += fmt.Sprintf("\ndepth %s", fmtFloat(col.Depth))
		}
		fmt.Fprintf(&buf, "    label=%q;\n    style=dashed;\n", label)
		for li := len(m.Levels) - 1; li >= 0; li-- {
			fmt.Fprintf(&buf, "    %s [label=%q, fillcolor=%s];\n",
				cellID(ci, li), cellLabel(col.Rows[li], m.Levels[li], opts.Detailed), roleColors[col.Role])
		}
		for li := len(m.Levels) - 1; li > 0; li-- {
			fmt.Fprintf(&buf, "    %s -> %s [style=invis];\n", cellID(ci, li), cellID(ci, li-1))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for li := range m.Levels {
		ids := make([]string, len(m.Columns))
		for ci := range m.Columns {
			ids[ci] = cellID(ci, li)
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
		for ci := 1; ci < len(ids); ci++ {
			fmt.Fprintf(&buf, "  %s -> %s [style=invis];\n", ids[ci-1], ids[ci])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func cellID(col, level int) string {
	return fmt.Sprintf("c%d_l%d", col, level)
}

func cellLabel(gg layout.GridGroup, level layout.Level, detailed bool) string {
	lines := make([]string, 0, len(gg.Modules)+1)
	for _, pm := range gg.Modules {
		line := pm.Module.DNA
		if detailed {
			d := pm.Module.Dimensions
			line += fmt.Sprintf(" (%sx%sx%s)", fmtFloat(d.Width), fmtFloat(d.Height), fmtFloat(d.Length))
		}
		lines = append(lines, line)
	}
	if detailed {
		lines = append(lines, "level "+level.Type)
	}
	return strings.Join(lines, "\n")
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag to a zero-origin viewBox with
// matching pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
